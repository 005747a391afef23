package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

func TestListSQL_CursorOrdenaPorID(t *testing.T) {
	sql, args := listSQL("users", repository.Query{StartAfter: "u9", Limit: 50, OrderBy: "createdAt"})
	assert.Contains(t, sql, "AND id > $2")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY id LIMIT $3"))
	assert.Equal(t, []any{"users", "u9", 50}, args)
}

func TestListSQL_OrdenPorCampoDescendente(t *testing.T) {
	sql, args := listSQL("submissions", repository.Query{OrderBy: "timestamp", Desc: true, Limit: 20})
	assert.Contains(t, sql, "data->$2::text")
	assert.Contains(t, sql, `COLLATE "C" DESC`)
	assert.NotContains(t, sql, "id >")
	assert.Equal(t, []any{"submissions", "timestamp", 20}, args)
}

func TestListSQL_SinModificadores(t *testing.T) {
	sql, args := listSQL("settings", repository.Query{})
	assert.True(t, strings.HasSuffix(sql, "ORDER BY id"))
	assert.Equal(t, []any{"settings"}, args)
}
