package prom

import (
	"fmt"
	"sync"

	xhttp "github.com/nimasrn/freight-bids/pkg/http"
	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemInvitations = "invitation"
	SystemAccess      = "access"
	SystemResponses   = "response"
)

const (
	MetricInvitationsIssued       = "issued_total"
	MetricInvitationTransitions   = "transitions_total"
	MetricInvitationDeliveryDelay = "delivery_duration_seconds"
	MetricAccessDenied            = "denied_total"
	MetricResponsesRecorded       = "recorded_total"
	MetricDeliveryQueuePending    = "delivery_queue_pending"
)

const (
	TypeCounter      = "counter"
	TypeCounterVec   = "counterVec"
	TypeHistogramVec = "histogramVec"
	TypeGaugeVec     = "gaugeVec"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionGaugeVec = make(map[string]*prometheus.GaugeVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

type metricDef struct {
	kind      string
	subsystem string
	name      string
	labels    []string
}

var serviceMetrics = []metricDef{
	{TypeCounter, SystemInvitations, MetricInvitationsIssued, nil},
	{TypeCounterVec, SystemInvitations, MetricInvitationTransitions, []string{"event"}},
	{TypeHistogramVec, SystemInvitations, MetricInvitationDeliveryDelay, []string{"channel"}},
	{TypeGaugeVec, SystemInvitations, MetricDeliveryQueuePending, []string{"queue"}},
	{TypeCounterVec, SystemAccess, MetricAccessDenied, []string{"reason"}},
	{TypeCounterVec, SystemResponses, MetricResponsesRecorded, []string{"kind"}},
}

// Create registers every metric the service reports. It must run once per
// process before any Add/Inc helper is used; until then the helpers are no-ops.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	for _, m := range serviceMetrics {
		hasError(CreateMetric(m.kind, m.subsystem, m.name, m.labels...))
	}

	return err
}

// CreateMetric registers one metric by type. Labels are ignored for a plain
// counter.
func CreateMetric(metricType, metricSubsystem, metricName string, labelsValues ...string) error {
	switch metricType {
	case TypeCounter:
		return createCounter(metricSubsystem, metricName)
	case TypeCounterVec:
		return createCounterVec(metricSubsystem, metricName, labelsValues)
	case TypeHistogramVec:
		return createHistogramVec(metricSubsystem, metricName, labelsValues)
	case TypeGaugeVec:
		return createGaugeVec(metricSubsystem, metricName, labelsValues)
	}
	return fmt.Errorf("metric type %s is not defined", metricType)
}

func ListenAndServer(addr string, url string) {
	s := xhttp.CreateServer()
	s.GET(url, fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     []float64{0.5, 1, 5, 15, 30, 60, 300, 900, 3600},
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func createGaugeVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionGaugeVec[subsystem+name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionGaugeVec[subsystem+name])
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func SetGaugeVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionGaugeVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Set(num)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func AddInvitationsIssued(n int) {
	AddCounter(SystemInvitations, MetricInvitationsIssued, float64(n))
}

func IncInvitationTransition(event string) {
	IncCounterVec(SystemInvitations, MetricInvitationTransitions, event)
}

func AddInvitationDeliveryDuration(seconds float64, channel string) {
	AddHistogramVec(SystemInvitations, MetricInvitationDeliveryDelay, seconds, channel)
}

func SetDeliveryQueuePending(queue string, pending int64) {
	SetGaugeVec(SystemInvitations, MetricDeliveryQueuePending, float64(pending), queue)
}

func IncAccessDenied(reason string) {
	IncCounterVec(SystemAccess, MetricAccessDenied, reason)
}

func IncResponseRecorded(kind string) {
	IncCounterVec(SystemResponses, MetricResponsesRecorded, kind)
}
