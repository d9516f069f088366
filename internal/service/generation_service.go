package service

import (
	"context"
	"errors"

	"github.com/bcnelson/cicd-wizard/internal/archive"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/generator"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/prompt"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Exporter uploads a packaged archive somewhere durable.
type Exporter interface {
	Export(ctx context.Context, sessionID, generationID string, data []byte) (*domain.ExportResponse, error)
}

// GenerationService runs the external generation and explanation calls for
// sessions and packages their results.
type GenerationService struct {
	wizard   *WizardService
	gen      generator.Generator
	exporter Exporter

	summaries singleflight.Group
	archives  *lru.Cache[string, []byte]
}

// NewGenerationService creates a new GenerationService. exporter may be nil,
// in which case Export returns domain.ErrArchiveDisabled.
func NewGenerationService(ws *WizardService, gen generator.Generator, exporter Exporter, archiveCacheSize int) (*GenerationService, error) {
	if archiveCacheSize <= 0 {
		archiveCacheSize = 128
	}
	cache, err := lru.New[string, []byte](archiveCacheSize)
	if err != nil {
		return nil, err
	}
	return &GenerationService{
		wizard:   ws,
		gen:      gen,
		exporter: exporter,
		archives: cache,
	}, nil
}

// GeneratorName identifies the configured generator.
func (s *GenerationService) GeneratorName() string {
	return s.gen.Name()
}

// Request returns what would be sent to the generator for the session's
// current selection.
func (s *GenerationService) Request(ctx context.Context, id string) (prompt.Request, error) {
	session, err := s.wizard.Get(ctx, id)
	if err != nil {
		return prompt.Request{}, err
	}
	return prompt.Build(session.Selection)
}

// InProgress reports whether a generation is running for the session.
func (s *GenerationService) InProgress(id string) bool {
	return s.wizard.Generating(id)
}

// Generate builds the request from the session's selection, calls the
// generator and stores the files as a new result. Only one generation runs
// per session at a time and the session cannot be reset while it runs. On
// failure the error is recorded on the session and the selection and any
// previous result are left as they were.
func (s *GenerationService) Generate(ctx context.Context, id string) (*domain.Session, error) {
	if !s.wizard.beginGeneration(id) {
		return nil, domain.ErrGenerationInProgress
	}
	defer s.wizard.endGeneration(id)

	req, err := s.Request(ctx, id)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx).With("session_id", id, "generator", s.gen.Name())
	log.Info("generating templates")

	files, genErr := s.gen.Generate(ctx, req)
	if genErr == nil && len(files) == 0 {
		genErr = domain.ErrMalformedResponse
	}
	if genErr != nil {
		log.Warn("generation failed", "error", genErr)
		if _, err := s.wizard.mutate(ctx, id, func(session *domain.Session) error {
			session.LastError = genErr.Error()
			return nil
		}); err != nil {
			return nil, errors.Join(genErr, err)
		}
		return nil, genErr
	}

	generationID := uuid.New().String()
	session, err := s.wizard.mutate(ctx, id, func(session *domain.Session) error {
		result, err := wizard.NewResult(generationID, files, s.wizard.now())
		if err != nil {
			return err
		}
		session.Result = result
		session.LastError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("templates generated", "generation_id", generationID, "files", len(files))
	return session, nil
}

// Summary returns the explanation for the session's files, fetching it once
// per generation. Concurrent callers share one provider call.
func (s *GenerationService) Summary(ctx context.Context, id string) (*domain.SummaryResponse, error) {
	session, err := s.wizard.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Result == nil {
		return nil, domain.ErrNoResult
	}
	generationID := session.Result.GenerationID
	if text, ok := wizard.WrapResult(session.Result).CachedSummary(); ok {
		return &domain.SummaryResponse{GenerationID: generationID, Summary: text, Cached: true}, nil
	}

	v, err, shared := s.summaries.Do(id+"/"+generationID, func() (any, error) {
		return s.fetchSummary(ctx, id, generationID)
	})
	if err != nil {
		return nil, err
	}
	resp := *v.(*domain.SummaryResponse)
	if shared {
		resp.Cached = true
	}
	return &resp, nil
}

func (s *GenerationService) fetchSummary(ctx context.Context, id, generationID string) (*domain.SummaryResponse, error) {
	session, err := s.wizard.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Result == nil || session.Result.GenerationID != generationID {
		return nil, domain.ErrNoResult
	}
	if text, ok := wizard.WrapResult(session.Result).CachedSummary(); ok {
		return &domain.SummaryResponse{GenerationID: generationID, Summary: text, Cached: true}, nil
	}

	text, explainErr := s.gen.Explain(ctx, session.Result.Files)
	if explainErr != nil {
		logging.FromContext(ctx).Warn("explanation failed", "session_id", id, "error", explainErr)
		if _, err := s.wizard.mutate(ctx, id, func(session *domain.Session) error {
			session.LastError = explainErr.Error()
			return nil
		}); err != nil {
			logging.FromContext(ctx).Error("failed to record explanation error", "session_id", id, "error", err)
		}
		return nil, explainErr
	}

	if _, err := s.wizard.mutate(ctx, id, func(session *domain.Session) error {
		// a newer generation replaces the files this summary describes
		if session.Result != nil && session.Result.GenerationID == generationID {
			wizard.WrapResult(session.Result).SetSummary(text)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &domain.SummaryResponse{GenerationID: generationID, Summary: text}, nil
}

// InvalidateSummary drops the cached explanation so the next Summary call
// fetches a new one.
func (s *GenerationService) InvalidateSummary(ctx context.Context, id string) (*domain.Session, error) {
	return s.wizard.mutate(ctx, id, func(session *domain.Session) error {
		if session.Result == nil {
			return domain.ErrNoResult
		}
		wizard.WrapResult(session.Result).InvalidateSummary()
		return nil
	})
}

// Archive returns the zip of the session's files. Archives are cached per
// generation.
func (s *GenerationService) Archive(ctx context.Context, id string) ([]byte, *domain.Result, error) {
	session, err := s.wizard.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Result == nil {
		return nil, nil, domain.ErrNoResult
	}
	if data, ok := s.archives.Get(session.Result.GenerationID); ok {
		return data, session.Result, nil
	}
	data, err := archive.Bytes(session.Result.Files)
	if err != nil {
		return nil, nil, err
	}
	s.archives.Add(session.Result.GenerationID, data)
	return data, session.Result, nil
}

// Export uploads the session's archive with the configured exporter.
func (s *GenerationService) Export(ctx context.Context, id string) (*domain.ExportResponse, error) {
	if s.exporter == nil {
		return nil, domain.ErrArchiveDisabled
	}
	data, result, err := s.Archive(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.exporter.Export(ctx, id, result.GenerationID, data)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("archive exported", "session_id", id, "bucket", resp.Bucket, "key", resp.Key)
	return resp, nil
}
