package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Iron-Ham/taglog/internal/diag"
	"github.com/Iron-Ham/taglog/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObservedLogger(t *testing.T, c *Collector, opts ...logging.Option) *logging.Logger {
	t.Helper()
	base := []logging.Option{
		logging.WithObserver(c),
		logging.WithDiagnostics(diag.New(diag.Config{Output: io.Discard})),
	}
	return logging.New(append(base, opts...)...)
}

func TestCollector_CountsAcceptedAndGated(t *testing.T) {
	c := NewCollector()
	l := newObservedLogger(t, c, logging.WithMinLevel(logging.LevelInfo))

	l.Debug("auth", "db", "login", "dropped", nil)
	l.Info("auth", "auth_module", "login", "ok", nil)
	l.Error("auth", "db", "login", "fail", nil)
	l.Error("auth", "db", "login", "fail again", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.EntriesTotal.WithLabelValues("INFO", "auth", "auth_module")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.EntriesTotal.WithLabelValues("ERROR", "auth", "db")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GatedTotal.WithLabelValues("DEBUG")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.EvictedTotal))
}

func TestCollector_CountsEvictionsAndFailures(t *testing.T) {
	c := NewCollector()
	broken := logging.HandlerFunc(func(*logging.Entry) error { return errors.New("boom") })
	l := newObservedLogger(t, c, logging.WithMaxEntries(2), logging.WithHandlers(broken))

	for i := 0; i < 5; i++ {
		l.Info("f", "m", "fn", "msg", nil)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(c.EvictedTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.HandlerFailures.WithLabelValues("logging.HandlerFunc")))
}

func TestCollector_ObservesDurations(t *testing.T) {
	c := NewCollector()
	l := newObservedLogger(t, c)

	l.Info("payment", "api", "charge", "done", logging.Params{"duration": 0.25})
	l.Info("payment", "api", "charge", "done", logging.Params{"elapsed_time": 2})
	l.Info("payment", "api", "charge", "done", logging.Params{"duration": "fast"})

	count := testutil.CollectAndCount(c.Durations, "taglog_operation_duration_seconds")
	assert.Equal(t, 1, count, "one series for payment/charge")

	samples, err := c.Counters()
	require.NoError(t, err)
	var histogramCount float64
	for _, s := range samples {
		if s.Series == `taglog_operation_duration_seconds{feature="payment",function="charge"}_count` {
			histogramCount = s.Value
		}
	}
	assert.Equal(t, 2.0, histogramCount)
}

func TestCollector_CountersAreSorted(t *testing.T) {
	c := NewCollector()
	l := newObservedLogger(t, c)
	l.Warning("search", "index", "query", "slow", nil)
	l.Info("auth", "db", "login", "ok", nil)

	samples, err := c.Counters()
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Series, samples[i].Series)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.EntryGated(logging.LevelDebug)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `taglog_entries_gated_total{level="DEBUG"} 1`)
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.EntryEvicted(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.EvictedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EvictedTotal))
}
