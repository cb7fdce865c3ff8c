package usecase

import drepo "StockPulse/internal/domain/repository"

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string, float64)  {}
func (nopMetrics) RecordCacheHit(bool)             {}
func (nopMetrics) RecordSalesIngested(string, int) {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLatency(string, float64)   {}

func metricsOrNop(m drepo.Metrics) drepo.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
