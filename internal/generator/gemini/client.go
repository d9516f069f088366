// Package gemini implements generator.Generator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/generator"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/prompt"
	genai "google.golang.org/genai"
)

// APIKeyVariable is the environment variable holding the credential.
const APIKeyVariable = "GEMINI_API_KEY"

const providerName = "gemini"

// contentModels is the part of genai.Models the client calls.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures a Client.
type Options struct {
	APIKey      string
	Model       string
	MaxAttempts int
	RetryDelay  time.Duration
	// Timeout bounds each Generate or Explain call, retries included. Zero
	// means no limit beyond the caller's context.
	Timeout     time.Duration
}

// Client talks to Gemini. The underlying SDK client is created on first use,
// after the credential has been checked, so a bad key never reaches the
// network.
type Client struct {
	apiKey      string
	model       string
	maxAttempts int
	retryDelay  time.Duration
	timeout     time.Duration

	mu        sync.Mutex
	models    contentModels
	newModels func(ctx context.Context, apiKey string) (contentModels, error)
}

// Ensure Client implements generator.Generator.
var _ generator.Generator = (*Client)(nil)

// New creates a Gemini client. It does not validate the key; that happens on
// every call so the error can be surfaced to the user.
func New(opts Options) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 300 * time.Millisecond
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       opts.Model,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		timeout:     opts.Timeout,
		newModels:   newSDKModels,
	}
}

func newSDKModels(ctx context.Context, apiKey string) (contentModels, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return cli.Models, nil
}

// Name implements generator.Generator.
func (c *Client) Name() string { return "Gemini:" + c.model }

// CheckAPIKey reports a ConfigError when key is empty or an obvious placeholder.
func CheckAPIKey(key string) error {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case k == "", k == "undefined", k == "null":
		return &domain.ConfigError{
			Variable: APIKeyVariable,
			Hint:     "Set " + APIKeyVariable + " in the environment or .env file and restart the server",
		}
	case k == "changeme", k == "placeholder", strings.HasPrefix(k, "your"), strings.HasPrefix(k, "<"):
		return &domain.ConfigError{
			Variable: APIKeyVariable,
			Hint:     APIKeyVariable + " still holds a placeholder value; replace it with a real key",
		}
	}
	return nil
}

// Generate asks Gemini for pipeline files shaped by req.Schema.
func (c *Client) Generate(ctx context.Context, req prompt.Request) ([]domain.GeneratedFile, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toSchema(req.Schema),
	}
	text, err := c.call(ctx, "generate", req.Instruction, cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ProviderError{
			Provider: providerName,
			Op:       "generate",
			Message:  "No response generated from Gemini.",
			Err:      domain.ErrMalformedResponse,
		}
	}
	return generator.ParseFiles([]byte(text))
}

// Explain asks Gemini for a short summary of files.
func (c *Client) Explain(ctx context.Context, files []domain.GeneratedFile) (string, error) {
	instruction, err := prompt.BuildExplanation(files)
	if err != nil {
		return "", err
	}
	text, err := c.call(ctx, "explain", instruction, nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return generator.FallbackExplanation, nil
	}
	return text, nil
}

func (c *Client) call(ctx context.Context, op, instruction string, cfg *genai.GenerateContentConfig) (string, error) {
	if err := CheckAPIKey(c.apiKey); err != nil {
		return "", err
	}
	models, err := c.sdk(ctx)
	if err != nil {
		return "", &domain.ProviderError{Provider: providerName, Op: op, Message: err.Error(), Err: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log := logging.FromContext(ctx).With("provider", providerName, "model", c.model, "op", op)
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: instruction}}}}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			log.Warn("retrying request", "attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", &domain.ProviderError{Provider: providerName, Op: op, Message: ctx.Err().Error(), Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		log.Debug("sending request", "bytes", len(instruction), "attempt", attempt+1)
		resp, err := models.GenerateContent(ctx, c.model, contents, cfg)
		if err == nil {
			return responseText(resp), nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}

	log.Error("request failed", "error", lastErr)
	return "", &domain.ProviderError{Provider: providerName, Op: op, Message: lastErr.Error(), Err: lastErr}
}

// retryable reports whether err is worth another attempt. Transport errors,
// rate limiting and server errors are; cancellation and other API errors are
// not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code >= http.StatusInternalServerError || apiErrPtr.Code == http.StatusTooManyRequests
	}
	return true
}

func (c *Client) sdk(ctx context.Context) (contentModels, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.models != nil {
		return c.models, nil
	}
	m, err := c.newModels(ctx, c.apiKey)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	c.models = m
	return m, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
