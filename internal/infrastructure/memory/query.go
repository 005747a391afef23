package memory

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jdmorgan/trading-portal/internal/domain/repository"
)

// ApplyQuery ordena, filtra y limita documentos en proceso con la semántica
// de repository.Query. Lo comparten los adaptadores sin motor de consultas.
func ApplyQuery(docs []repository.Document, q repository.Query) []repository.Document {
	out := make([]repository.Document, 0, len(docs))
	if q.StartAfter != "" || q.OrderBy == "" {
		for _, d := range docs {
			if q.StartAfter == "" || d.ID > q.StartAfter {
				out = append(out, d)
			}
		}
		slices.SortFunc(out, func(a, b repository.Document) int { return strings.Compare(a.ID, b.ID) })
		return limit(out, q.Limit)
	}

	type keyed struct {
		doc repository.Document
		val any
		ok  bool
	}
	ks := make([]keyed, 0, len(docs))
	for _, d := range docs {
		v, ok := fieldValue(d.Data, q.OrderBy)
		ks = append(ks, keyed{doc: d, val: v, ok: ok})
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case a.ok && b.ok:
			c := compareValues(a.val, b.val)
			if q.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(a.doc.ID, b.doc.ID)
	})
	for _, k := range ks {
		out = append(out, k.doc)
	}
	return limit(out, q.Limit)
}

func limit(docs []repository.Document, n int) []repository.Document {
	if n > 0 && len(docs) > n {
		return docs[:n]
	}
	return docs
}

func fieldValue(data json.RawMessage, field string) (any, bool) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	v, ok := m[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// rank: números < strings < booleanos < resto.
func rank(v any) int {
	switch v.(type) {
	case float64:
		return 0
	case string:
		return 1
	case bool:
		return 2
	default:
		return 3
	}
}

func compareValues(a, b any) int {
	if ra, rb := rank(a), rank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}
