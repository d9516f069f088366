// Package storagetest holds the behaviour every storage.Storage
// implementation must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string, updated time.Time) *domain.Session {
	return &domain.Session{
		ID: id,
		Selection: domain.SelectionState{
			Cloud:        domain.CloudAWS,
			Environments: []domain.Environment{{ID: "dev", Name: "Development"}},
			Advanced:     domain.AdvancedOptions{ManualApproval: true, DeploymentStrategy: domain.StrategyStandard},
		},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

// Run exercises store against the storage contract.
func Run(t *testing.T, open func(t *testing.T) storage.Storage) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		store := open(t)
		s := newSession("s1", base)
		require.NoError(t, store.CreateSession(ctx, s))

		got, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, s.Selection, got.Selection)
		assert.Nil(t, got.Result)
		assert.True(t, base.Equal(got.CreatedAt))

		err = store.CreateSession(ctx, newSession("s1", base))
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

		_, err = store.GetSession(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("update round-trips result", func(t *testing.T) {
		store := open(t)
		s := newSession("s2", base)
		require.NoError(t, store.CreateSession(ctx, s))

		summary := "Builds on push."
		s.Selection.TargetResource = domain.TargetVM
		s.Result = &domain.Result{
			GenerationID: "g1",
			Files:        []domain.GeneratedFile{{Filename: "a.yml", Content: "x", Description: "d"}},
			Active:       "a.yml",
			Summary:      &summary,
			GeneratedAt:  base,
		}
		s.LastError = "boom"
		s.UpdatedAt = base.Add(time.Minute)
		require.NoError(t, store.UpdateSession(ctx, s))

		got, err := store.GetSession(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, domain.TargetVM, got.Selection.TargetResource)
		require.NotNil(t, got.Result)
		assert.Equal(t, s.Result.Files, got.Result.Files)
		require.NotNil(t, got.Result.Summary)
		assert.Equal(t, summary, *got.Result.Summary)
		assert.Equal(t, "boom", got.LastError)

		err = store.UpdateSession(ctx, newSession("missing", base))
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("returned sessions are copies", func(t *testing.T) {
		store := open(t)
		s := newSession("s3", base)
		require.NoError(t, store.CreateSession(ctx, s))
		s.Selection.Environments[0].Name = "changed"

		got, err := store.GetSession(ctx, "s3")
		require.NoError(t, err)
		assert.Equal(t, "Development", got.Selection.Environments[0].Name)

		got.Selection.Environments[0].Name = "changed again"
		again, err := store.GetSession(ctx, "s3")
		require.NoError(t, err)
		assert.Equal(t, "Development", again.Selection.Environments[0].Name)
	})

	t.Run("delete and expire", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.CreateSession(ctx, newSession("old", base)))
		require.NoError(t, store.CreateSession(ctx, newSession("new", base.Add(time.Hour))))
		require.NoError(t, store.CreateSession(ctx, newSession("gone", base)))

		require.NoError(t, store.DeleteSession(ctx, "gone"))
		assert.True(t, errors.Is(store.DeleteSession(ctx, "gone"), domain.ErrNotFound))

		n, err := store.DeleteExpiredSessions(ctx, base.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		count, err := store.CountSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = store.GetSession(ctx, "new")
		assert.NoError(t, err)
	})
}
