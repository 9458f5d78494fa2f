package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("mail:send").End(nil))
	boom := errors.New("smtp down")
	assert.ErrorIs(t, m.Track("mail:send").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("mail:send")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	boom := errors.New("x")
	assert.ErrorIs(t, m.Track("job").End(boom), boom)
	m.MailSent("order")
}

func TestMailSent(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.MailSent("order_confirmation")
	m.MailSent("order_confirmation")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mails.WithLabelValues("order_confirmation")))
}
