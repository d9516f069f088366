package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/catalog"
	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/logging"
	"github.com/bcnelson/cicd-wizard/internal/storage"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
	"github.com/google/uuid"
)

// SessionView is a session plus the values derived from its selection.
type SessionView struct {
	*domain.Session
	Complete                 bool                     `json:"complete"`
	Valid                    bool                     `json:"valid"`
	CompatibilityError       string                   `json:"compatibilityError,omitempty"`
	AvailableTargetResources []catalog.ResourceOption `json:"availableTargetResources"`
}

// View derives the display state for a session.
func View(s *domain.Session) *SessionView {
	sel := wizard.Wrap(&s.Selection)
	return &SessionView{
		Session:                  s,
		Complete:                 sel.IsComplete(),
		Valid:                    sel.IsValid(),
		CompatibilityError:       sel.CompatibilityError(),
		AvailableTargetResources: sel.AvailableTargetResources(),
	}
}

// WizardService applies wizard edits to stored sessions. Every edit is a
// read-modify-write under one lock so concurrent requests for a session
// never lose updates.
type WizardService struct {
	store storage.Storage
	now   func() time.Time

	mu         sync.Mutex
	generating map[string]struct{}
}

// NewWizardService creates a new WizardService.
func NewWizardService(store storage.Storage) *WizardService {
	return &WizardService{store: store, now: time.Now, generating: make(map[string]struct{})}
}

// Generating reports whether a generation is running for the session.
func (s *WizardService) Generating(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.generating[id]
	return ok
}

// beginGeneration marks the session as generating. It returns false when a
// generation is already running.
func (s *WizardService) beginGeneration(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.generating[id]; busy {
		return false
	}
	s.generating[id] = struct{}{}
	return true
}

func (s *WizardService) endGeneration(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generating, id)
}

// Start creates a session with the default selection.
func (s *WizardService) Start(ctx context.Context) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.New().String(),
		Selection: wizard.NewSelection(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("session started", "session_id", session.ID)
	return session, nil
}

// Get returns a session.
func (s *WizardService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.GetSession(ctx, id)
}

// mutate loads a session, applies fn and stores the result. Nothing is
// written when fn fails.
func (s *WizardService) mutate(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetField changes one single-choice field.
func (s *WizardService) SetField(ctx context.Context, id, key, value string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		return wizard.Wrap(&session.Selection).SetField(key, value)
	})
}

// SetAdvanced replaces the advanced options.
func (s *WizardService) SetAdvanced(ctx context.Context, id string, opts domain.AdvancedOptions) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		return wizard.Wrap(&session.Selection).SetAdvanced(opts)
	})
}

// AddEnvironment appends an environment. Blank names are rejected and leave
// the list unchanged.
func (s *WizardService) AddEnvironment(ctx context.Context, id, name string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		if !wizard.Wrap(&session.Selection).AddEnvironment(name) {
			return fmt.Errorf("%w: environment name must not be empty", domain.ErrInvalidInput)
		}
		return nil
	})
}

// RemoveEnvironment deletes the environment at index.
func (s *WizardService) RemoveEnvironment(ctx context.Context, id string, index int) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		if !wizard.Wrap(&session.Selection).RemoveEnvironment(index) {
			return fmt.Errorf("%w: environment %d", domain.ErrNotFound, index)
		}
		return nil
	})
}

// MoveEnvironment swaps the environment at index with its neighbour.
// Moving past either end leaves the list unchanged and is not an error.
func (s *WizardService) MoveEnvironment(ctx context.Context, id string, index, direction int) (*domain.Session, error) {
	if direction != -1 && direction != 1 {
		return nil, fmt.Errorf("%w: direction must be -1 or 1", domain.ErrInvalidInput)
	}
	return s.mutate(ctx, id, func(session *domain.Session) error {
		wizard.Wrap(&session.Selection).MoveEnvironment(index, direction)
		return nil
	})
}

// RenameEnvironment changes the display name of the environment at index.
func (s *WizardService) RenameEnvironment(ctx context.Context, id string, index int, name string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		envs := session.Selection.Environments
		if index < 0 || index >= len(envs) {
			return fmt.Errorf("%w: environment %d", domain.ErrNotFound, index)
		}
		if !wizard.Wrap(&session.Selection).RenameEnvironment(index, name) {
			return fmt.Errorf("%w: environment name must not be empty", domain.ErrInvalidInput)
		}
		return nil
	})
}

// Reset restores the default selection and discards any generated files.
// It fails with domain.ErrGenerationInProgress while a generation is running.
func (s *WizardService) Reset(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		// fn runs under s.mu
		if _, busy := s.generating[id]; busy {
			return domain.ErrGenerationInProgress
		}
		wizard.Wrap(&session.Selection).Reset()
		session.Result = nil
		session.LastError = ""
		return nil
	})
}

// SelectFile makes filename the active generated file.
func (s *WizardService) SelectFile(ctx context.Context, id, filename string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		if session.Result == nil {
			return domain.ErrNoResult
		}
		if !wizard.WrapResult(session.Result).Select(filename) {
			return fmt.Errorf("%w: file %q", domain.ErrNotFound, filename)
		}
		return nil
	})
}

// CopyActive writes the active file's content to cb.
func (s *WizardService) CopyActive(ctx context.Context, id string, cb wizard.Clipboard) error {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session.Result == nil {
		return domain.ErrNoResult
	}
	return wizard.WrapResult(session.Result).CopyActive(cb)
}

// DismissError clears the last generation error.
func (s *WizardService) DismissError(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		session.LastError = ""
		return nil
	})
}

// Purge removes sessions idle since before the cutoff.
func (s *WizardService) Purge(ctx context.Context, before time.Time) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.FromContext(ctx).Info("purged idle sessions", "count", n)
	}
	return n, nil
}

// RunJanitor purges sessions idle longer than ttl every interval until ctx
// is cancelled.
func (s *WizardService) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Purge(ctx, s.now().Add(-ttl)); err != nil {
				logging.FromContext(ctx).Warn("session purge failed", "error", err)
			}
		}
	}
}
