// Package prom registers the pipeline's metrics against the default
// registry. Until Create runs the increment helpers are no-ops, so one-shot
// jobs and tests never touch prometheus state.
package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cshealth/reminder-gateway/pkg/logger"
)

// Subsystems.
const (
	SystemReminders = "reminders"
	SystemInbox     = "inbox"
	SystemGateway   = "gateway"
)

// Metric names.
const (
	MetricRemindersSent    = "sent_total"
	MetricRemindersSkipped = "skipped_total"
	MetricInboxMessages    = "messages_total"
	MetricGatewayRequests  = "requests_total"
	MetricGatewayDuration  = "request_duration_seconds"
)

var registerMu = &sync.Mutex{}
var namespace = "none"

var enabled = false

var counterVecs = make(map[string]*prometheus.CounterVec)
var histogramVecs = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers every metric the jobs and gateway clients bump. host and
// env become constant labels on all of them.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	enabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemReminders, MetricRemindersSent, []string{"kind"}))
	hasError(createCounterVec(SystemReminders, MetricRemindersSkipped, []string{"reason"}))
	hasError(createCounterVec(SystemInbox, MetricInboxMessages, []string{"outcome"}))
	hasError(createCounterVec(SystemGateway, MetricGatewayRequests, []string{"gateway", "result"}))
	hasError(createHistogramVec(SystemGateway, MetricGatewayDuration, []string{"gateway"}))

	return err
}

func createCounterVec(subsystem, name string, labels []string) error {
	registerMu.Lock()
	defer registerMu.Unlock()
	counterVecs[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(counterVecs[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	registerMu.Lock()
	defer registerMu.Unlock()
	histogramVecs[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return prometheus.Register(histogramVecs[subsystem+name])
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !enabled {
		return
	}
	if v, ok := counterVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func ObserveHistogramVec(subsystem, name string, value float64, labelValues ...string) {
	if !enabled {
		return
	}
	if v, ok := histogramVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(value)
		return
	}
	logger.Warn("histogram not found", "subsystem", subsystem, "name", name)
}
