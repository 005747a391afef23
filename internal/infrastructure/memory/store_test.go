package memory_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/domain"
	"github.com/jdmorgan/trading-portal/internal/domain/repository"
	"github.com/jdmorgan/trading-portal/internal/infrastructure/memory"
)

func docs(pairs ...string) []repository.Document {
	out := make([]repository.Document, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, repository.Document{ID: pairs[i], Data: json.RawMessage(pairs[i+1])})
	}
	return out
}

func ids(ds []repository.Document) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyQuery
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyQuery_PorIDConCursor(t *testing.T) {
	in := docs("c", `{}`, "a", `{}`, "b", `{}`, "d", `{}`)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(memory.ApplyQuery(in, repository.Query{})))
	assert.Equal(t, []string{"c", "d"}, ids(memory.ApplyQuery(in, repository.Query{StartAfter: "b"})))
	assert.Equal(t, []string{"c"}, ids(memory.ApplyQuery(in, repository.Query{StartAfter: "b", Limit: 1})))
}

func TestApplyQuery_CampoAusenteAlFinal(t *testing.T) {
	in := docs(
		"x", `{"order":2}`,
		"y", `{}`,
		"z", `{"order":1}`,
		"w", `{"order":null}`,
	)
	asc := memory.ApplyQuery(in, repository.Query{OrderBy: "order"})
	assert.Equal(t, []string{"z", "x", "w", "y"}, ids(asc))

	desc := memory.ApplyQuery(in, repository.Query{OrderBy: "order", Desc: true})
	assert.Equal(t, []string{"x", "z", "w", "y"}, ids(desc), "los ausentes quedan al final también en descendente")
}

func TestApplyQuery_TiposMezclados(t *testing.T) {
	in := docs("s", `{"v":"a"}`, "n", `{"v":10}`, "b", `{"v":true}`)
	assert.Equal(t, []string{"n", "s", "b"}, ids(memory.ApplyQuery(in, repository.Query{OrderBy: "v"})))
}

// ──────────────────────────────────────────────────────────────────────────────
// Store
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_CRUD(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "users", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Put(ctx, "users", "u1", json.RawMessage(`{"name":"Ana"}`)))
	data, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ana"}`, string(data))

	data[0] = 'X'
	again, _ := s.Get(ctx, "users", "u1")
	assert.JSONEq(t, `{"name":"Ana"}`, string(again), "Get devuelve una copia")

	require.NoError(t, s.Delete(ctx, "users", "u1"))
	require.NoError(t, s.Delete(ctx, "users", "u1"), "borrar dos veces no es error")
	assert.Equal(t, 0, s.Count("users"))

	assert.Error(t, s.Put(ctx, "users", "u2", json.RawMessage(`{roto`)))
}

func TestStore_BatchTodoONada(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "hero_slides", "1", json.RawMessage(`{}`)))

	err := s.Batch(ctx, []repository.WriteOp{
		repository.DeleteOp("hero_slides", "1"),
		{Collection: "hero_slides", ID: "2", Data: json.RawMessage(`nope`)},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, s.Count("hero_slides"))
}

func TestStore_SetFailureCuentaOperaciones(t *testing.T) {
	s := memory.NewStore()
	boom := errors.New("red caída")
	s.SetFailure(boom)

	err := s.Put(context.Background(), "users", "u1", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Ops())

	s.SetFailure(nil)
	assert.NoError(t, s.Put(context.Background(), "users", "u1", json.RawMessage(`{}`)))
}

func TestBlobStore_ProgresoYURL(t *testing.T) {
	b := memory.NewBlobStore("http://files.local/")
	ctx := context.Background()
	payload := bytes.Repeat([]byte("a"), 2*repository.BlobChunkSize+10)

	var calls int
	var last int64
	url, err := b.Upload(ctx, "submissions/u1/1 sco.pdf", bytes.NewReader(payload), int64(len(payload)), "application/pdf",
		func(done, total int64) {
			calls++
			last = done
			assert.Equal(t, int64(len(payload)), total)
		})
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/files/submissions/u1/1%20sco.pdf", url)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(len(payload)), last)
	assert.True(t, b.Has("submissions/u1/1 sco.pdf"))

	var out bytes.Buffer
	info, err := b.Download(ctx, "submissions/u1/1 sco.pdf", &out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), info.Size)

	require.NoError(t, b.Delete(ctx, "submissions/u1/1 sco.pdf"))
	assert.False(t, b.Has("submissions/u1/1 sco.pdf"))
}
