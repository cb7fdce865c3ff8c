package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordCacheHit(true)
	r.RecordCacheHit(false)
	r.RecordCacheHit(false)
	r.RecordSalesIngested("kafka", 12)
	r.RecordSalesIngested("kafka", 3)
	r.RecordError("store")
	r.RecordForecast("svm", 0.002)
	r.RecordLatency("forecast.report", 0.3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("false")))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.salesIngested.WithLabelValues("kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("store")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.forecastDuration))
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWithRegisterer(prometheus.NewRegistry())
		NewWithRegisterer(prometheus.NewRegistry())
	})
}
