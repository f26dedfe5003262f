package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/repository/firestore"
	"github.com/secmon-lab/talentbridge/pkg/repository/memory"
	"github.com/secmon-lab/talentbridge/pkg/repository/sqlite"
)

type repoFactory func(t *testing.T) interfaces.Repository

// runAll executes fn against every backend available in the environment.
// Firestore only runs when TEST_FIRESTORE_PROJECT_ID is set.
func runAll(t *testing.T, fn func(t *testing.T, newRepo repoFactory)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, func(t *testing.T) interfaces.Repository {
			return memory.New()
		})
	})

	t.Run("sqlite", func(t *testing.T) {
		fn(t, func(t *testing.T) interfaces.Repository {
			path := filepath.Join(t.TempDir(), "talentbridge.db")
			repo, err := sqlite.New(context.Background(), path)
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		})
	})

	t.Run("firestore", func(t *testing.T) {
		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
		}
		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

		fn(t, func(t *testing.T) interfaces.Repository {
			prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
			repo, err := firestore.New(context.Background(), projectID, databaseID, firestore.WithCollectionPrefix(prefix))
			gt.NoError(t, err).Required()
			t.Cleanup(func() { _ = repo.Close() })
			return repo
		})
	})
}

// timeClose compares timestamps allowing for backend precision loss
func timeClose(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < time.Second
}
