package bolt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/bolt"
)

func openStore(t *testing.T) (*bolt.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jdmorgan.db")
	s, err := bolt.Open(path, "http://localhost:8080")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func put(t *testing.T, s *bolt.Store, collection, id, body string) {
	t.Helper()
	require.NoError(t, s.Put(context.Background(), collection, id, json.RawMessage(body)))
}

func TestStore_GetAusente(t *testing.T) {
	s, _ := openStore(t)
	_, err := s.Get(context.Background(), "users", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PaginacionPorCursor(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		put(t, s, "users", fmt.Sprintf("u%d", i), fmt.Sprintf(`{"n":%d}`, i))
	}

	first, err := s.List(ctx, "users", repository.Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "u1", first[1].ID)

	next, err := s.List(ctx, "users", repository.Query{StartAfter: first[1].ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, []string{"u2", "u3"}, []string{next[0].ID, next[1].ID})

	rest, err := s.List(ctx, "users", repository.Query{StartAfter: "u35"})
	require.NoError(t, err)
	require.Len(t, rest, 1, "el cursor no tiene que existir como clave")
	assert.Equal(t, "u4", rest[0].ID)
}

func TestStore_OrdenPorCampo(t *testing.T) {
	s, _ := openStore(t)
	put(t, s, "submissions", "a", `{"timestamp":"2026-01-01T00:00:00.000Z"}`)
	put(t, s, "submissions", "b", `{"timestamp":"2026-03-01T00:00:00.000Z"}`)
	put(t, s, "submissions", "c", `{}`)

	got, err := s.List(context.Background(), "submissions", repository.Query{OrderBy: "timestamp", Desc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestStore_BatchAtomico(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	put(t, s, "hero_slides", "s1", `{"id":"s1"}`)

	err := s.Batch(ctx, []repository.WriteOp{
		repository.DeleteOp("hero_slides", "s1"),
		{Collection: "hero_slides", ID: "s2", Data: json.RawMessage(`{roto`)},
	})
	assert.Error(t, err)
	_, err = s.Get(ctx, "hero_slides", "s1")
	assert.NoError(t, err, "el tombstone no se aplica si el batch falla")
}

func TestStore_PersisteAlReabrir(t *testing.T) {
	s, path := openStore(t)
	put(t, s, "settings", "app_config", `{"logoText":"JD MORGAN"}`)
	require.NoError(t, s.Close())

	reopened, err := bolt.Open(path, "http://localhost:8080")
	require.NoError(t, err)
	defer reopened.Close()
	data, err := reopened.Get(context.Background(), "settings", "app_config")
	require.NoError(t, err)
	assert.JSONEq(t, `{"logoText":"JD MORGAN"}`, string(data))
}

func TestBlobStore_SubidaDescargaYBorrado(t *testing.T) {
	s, _ := openStore(t)
	blobs := s.Blobs()
	ctx := context.Background()
	payload := bytes.Repeat([]byte("z"), repository.BlobChunkSize+1)

	var last int64
	url, err := blobs.Upload(ctx, "slides/hero.png", bytes.NewReader(payload), int64(len(payload)), "image/png",
		func(done, total int64) { last = done })
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/slides/hero.png", url)
	assert.Equal(t, int64(len(payload)), last)

	var out bytes.Buffer
	info, err := blobs.Download(ctx, "slides/hero.png", &out)
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, payload, out.Bytes())

	require.NoError(t, blobs.Delete(ctx, "slides/hero.png"))
	_, err = blobs.Download(ctx, "slides/hero.png", &out)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
