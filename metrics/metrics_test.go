package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwellmetrics/api/models"
)

func TestRecordQuery(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordQuery("ok", 20*time.Millisecond)
	m.RecordQuery("ok", 30*time.Millisecond)
	m.RecordQuery("unavailable", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("unavailable")))
}

func TestRecordDiagnostics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordDiagnostics(models.Diagnostics{
		DroppedMalformed:      2,
		IgnoredUnknownType:    1,
		PageIntervalsAccepted: 7,
		PageIntervalsRejected: 3,
		SessionsAccepted:      4,
		SessionsRejected:      1,
	})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.IntervalsTotal.WithLabelValues("page", "accepted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IntervalsTotal.WithLabelValues("page", "rejected")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.IntervalsTotal.WithLabelValues("session", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntervalsTotal.WithLabelValues("session", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsFilteredTotal.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFilteredTotal.WithLabelValues("unknown_type")))
}

func TestRecordIngested(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordIngested(map[string]int{"click": 3, "page_view": 1})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsIngestedTotal.WithLabelValues("click")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsIngestedTotal.WithLabelValues("page_view")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/stats/paths", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats/paths?user_id=7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/stats/paths", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dwellmetrics_http_requests_total")
}
