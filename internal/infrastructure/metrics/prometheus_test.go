package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/infrastructure/metrics"
)

func TestPrometheus_Contadores(t *testing.T) {
	p := metrics.NewPrometheus()
	p.SubmissionAccepted("buyer")
	p.SubmissionAccepted("buyer")
	p.SubmissionAccepted("seller")
	p.HousekeepingDeleted("purge_unverified", 3)
	p.HousekeepingDeleted("purge_unverified", 0)
	p.PublishFinished(false)
	p.WorkspacesOpen(2)

	n, err := testutil.GatherAndCount(p.Registry(), "jdmorgan_intake_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por tipo")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `jdmorgan_intake_submissions_total{type="buyer"} 2`)
	assert.Contains(t, string(body), `jdmorgan_housekeeping_deleted_total{job="purge_unverified"} 3`)
	assert.Contains(t, string(body), `jdmorgan_admin_publishes_total{result="error"} 1`)
	assert.Contains(t, string(body), "jdmorgan_admin_workspaces_open 2")
}
