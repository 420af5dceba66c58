package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	rec := NewPrometheusRecorder(prom.NewRegistry())

	rec.IncControlTransition("machine", ResultCommitted)
	rec.IncControlTransition("machine", ResultCommitted)
	rec.IncControlTransition("auto_switch", ResultRejected)
	rec.IncPersistFailure("thermacore-settings")
	rec.IncSnapshotWrite()
	rec.SetUnviewedNotifications("admin", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.controlTransitions.WithLabelValues("machine", "committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.controlTransitions.WithLabelValues("auto_switch", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.persistFailures.WithLabelValues("thermacore-settings")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.snapshotWrites))
	assert.Equal(t, 4.0, testutil.ToFloat64(rec.unviewed.WithLabelValues("admin")))
}

func TestPrometheusRecorderHTTPHandler(t *testing.T) {
	rec := NewPrometheusRecorder(nil)
	rec.IncSnapshotWrite()

	w := httptest.NewRecorder()
	rec.HTTPHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "thermacore_notification_snapshot_writes_total")
}

func TestOrNoop(t *testing.T) {
	r := OrNoop(nil)
	assert.IsType(t, NoopRecorder{}, r)
	r.IncControlTransition("machine", ResultNoop)
}
