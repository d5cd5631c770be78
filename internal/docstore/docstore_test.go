package docstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallery/service/internal/db"
	"github.com/gallery/service/internal/docstore"
)

type photo struct {
	Owner    string    `json:"owner"`
	BlobName string    `json:"blob_name"`
	Title    string    `json:"title"`
	TakenAt  time.Time `json:"taken_at"`
}

func openSQLite(t *testing.T) *docstore.SQLite {
	t.Helper()
	s, err := docstore.OpenSQLite(context.Background(), "file:"+filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite(t *testing.T) {
	exerciseStore(t, openSQLite(t))
}

// TestPostgres runs against a live database when TEST_DATABASE_URL is set.
func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, url))
	pool, err := db.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DELETE FROM documents WHERE kind LIKE 'test_%'`)
	require.NoError(t, err)

	exerciseStore(t, docstore.NewPostgres(pool))
}

func exerciseStore(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	kind := "test_photo"

	t.Run("insert and get", func(t *testing.T) {
		in := photo{Owner: "alice", BlobName: "a.jpg", Title: "Beach", TakenAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
		key, err := s.Insert(ctx, kind, in)
		require.NoError(t, err)
		assert.Equal(t, kind, key.Kind)
		assert.NotEmpty(t, key.Name)

		doc, err := s.Get(ctx, key)
		require.NoError(t, err)
		var out photo
		require.NoError(t, doc.Decode(&out))
		assert.Equal(t, in, out)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, docstore.Key{Kind: kind, Name: "nope"})
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("query filters by every field", func(t *testing.T) {
		_, err := s.Insert(ctx, kind, photo{Owner: "bob", BlobName: "b1.jpg"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, kind, photo{Owner: "bob", BlobName: "b2.jpg"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, "test_other", photo{Owner: "bob", BlobName: "b1.jpg"})
		require.NoError(t, err)

		docs, err := s.Query(ctx, kind, docstore.Eq("owner", "bob"))
		require.NoError(t, err)
		require.Len(t, docs, 2)

		docs, err = s.Query(ctx, kind, docstore.Eq("owner", "bob"), docstore.Eq("blob_name", "b2.jpg"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		var out photo
		require.NoError(t, docs[0].Decode(&out))
		assert.Equal(t, "b2.jpg", out.BlobName)

		docs, err = s.Query(ctx, kind, docstore.Eq("owner", "carol"))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("query rejects bad field names", func(t *testing.T) {
		_, err := s.Query(ctx, kind, docstore.Eq("owner') OR 1=1 --", "x"))
		require.Error(t, err)
	})

	t.Run("put overwrites", func(t *testing.T) {
		key := docstore.Key{Kind: kind, Name: "fixed"}
		require.NoError(t, s.Put(ctx, key, photo{Owner: "dan", Title: "v1"}))
		require.NoError(t, s.Put(ctx, key, photo{Owner: "dan", Title: "v2"}))

		docs, err := s.Query(ctx, kind, docstore.Eq("owner", "dan"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		var out photo
		require.NoError(t, docs[0].Decode(&out))
		assert.Equal(t, "v2", out.Title)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		key, err := s.Insert(ctx, kind, photo{Owner: "erin"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, key))
		require.NoError(t, s.Delete(ctx, key))

		_, err = s.Get(ctx, key)
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})
}
