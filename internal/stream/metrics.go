package stream

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks per-subscription streaming statistics.
type Metrics struct {
	mu sync.Mutex

	deliveredTotal  *prometheus.CounterVec
	filteredTotal   *prometheus.CounterVec
	duplicatesTotal *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	reconnectsTotal *prometheus.CounterVec
	connectionState *prometheus.GaugeVec
	bufferOccupancy *prometheus.GaugeVec

	registerer prometheus.Registerer
	registered bool
}

func newStreamCounterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cantonstream",
			Subsystem: "stream",
			Name:      name,
			Help:      help,
		},
		[]string{"subscription"},
	)
}

func newStreamGaugeVec(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cantonstream",
			Subsystem: "stream",
			Name:      name,
			Help:      help,
		},
		[]string{"subscription"},
	)
}

// NewMetrics creates a streaming metrics collector. A nil registerer falls
// back to the Prometheus default registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		registerer:      registerer,
		deliveredTotal:  newStreamCounterVec("delivered_total", "Total number of transactions delivered to the subscription buffer"),
		filteredTotal:   newStreamCounterVec("filtered_total", "Total number of transactions excluded by the local filter"),
		duplicatesTotal: newStreamCounterVec("duplicates_total", "Total number of reconnection-replay duplicates discarded"),
		droppedTotal:    newStreamCounterVec("dropped_total", "Total number of buffered transactions evicted under the drop-oldest policy"),
		reconnectsTotal: newStreamCounterVec("reconnects_total", "Total number of reconnect attempts"),
		connectionState: newStreamGaugeVec("connection_state", "Driver state: 0 connecting, 1 streaming, 2 reconnecting, 3 closed"),
		bufferOccupancy: newStreamGaugeVec("buffer_occupancy", "Number of undelivered transactions currently buffered"),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.deliveredTotal,
		m.filteredTotal,
		m.duplicatesTotal,
		m.droppedTotal,
		m.reconnectsTotal,
		m.connectionState,
		m.bufferOccupancy,
	}
	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	m.registered = true
	return nil
}

func (m *Metrics) recordDelivered(subscription string, occupancy int) {
	m.deliveredTotal.WithLabelValues(subscription).Inc()
	m.bufferOccupancy.WithLabelValues(subscription).Set(float64(occupancy))
}

func (m *Metrics) recordFiltered(subscription string) {
	m.filteredTotal.WithLabelValues(subscription).Inc()
}

func (m *Metrics) recordDuplicate(subscription string) {
	m.duplicatesTotal.WithLabelValues(subscription).Inc()
}

func (m *Metrics) recordDropped(subscription string) {
	m.droppedTotal.WithLabelValues(subscription).Inc()
}

func (m *Metrics) recordReconnect(subscription string) {
	m.reconnectsTotal.WithLabelValues(subscription).Inc()
}

func (m *Metrics) recordState(subscription string, st driverState) {
	m.connectionState.WithLabelValues(subscription).Set(float64(st))
}

// forget drops the per-subscription label series once a subscription closes.
func (m *Metrics) forget(subscription string) {
	m.connectionState.DeleteLabelValues(subscription)
	m.bufferOccupancy.DeleteLabelValues(subscription)
}
