package persistence

import (
	"context"
	"testing"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendEntry(t *testing.T, repo *GormActivityRepository, user, action string, typ activity.Type) {
	entry, err := activity.NewLogEntry(user, action, "", typ)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), entry))
}

func TestGormActivityRepository_AppendAndFind(t *testing.T) {
	repo := NewGormActivityRepository(setupTestDB(t))
	ctx := context.Background()

	appendEntry(t, repo, "uploader", "Uploaded invoice batch", activity.TypeUpload)
	appendEntry(t, repo, "auditor", "Validated bin", activity.TypeAudit)
	appendEntry(t, repo, "auditor", "Completed audit", activity.TypeAudit)

	t.Run("by type", func(t *testing.T) {
		entries, err := repo.FindByType(ctx, activity.TypeAudit, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, entry := range entries {
			assert.Equal(t, activity.TypeAudit, entry.Type)
		}
	})

	t.Run("all types", func(t *testing.T) {
		entries, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("pagination", func(t *testing.T) {
		entries, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("no matches", func(t *testing.T) {
		entries, err := repo.FindByType(ctx, activity.TypeDispatch, shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
