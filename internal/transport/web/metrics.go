package web

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// unknownMessLabel replaces mess ids that do not exist so request paths
// cannot grow label cardinality.
const unknownMessLabel = "unknown"

type metrics struct {
	bookings   *prometheus.CounterVec
	subscribes *prometheus.CounterVec
	messSeats  *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusnest",
			Name:      "booking_requests_total",
			Help:      "Booking creation requests by response status.",
		}, []string{"status"}),
		subscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusnest",
			Name:      "mess_subscribe_requests_total",
			Help:      "Mess subscribe requests by response status.",
		}, []string{"mess", "status"}),
		messSeats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "campusnest",
			Name:      "mess_subscribers",
			Help:      "Current subscribers of a mess.",
		}, []string{"mess"}),
	}

	for _, c := range []prometheus.Collector{m.bookings, m.subscribes, m.messSeats} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return m, nil
}

func (m *metrics) booking(status int) {
	m.bookings.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *metrics) subscribe(messID string, status int) {
	m.subscribes.WithLabelValues(messID, strconv.Itoa(status)).Inc()
}

func (m *metrics) seats(messID string, current int) {
	m.messSeats.WithLabelValues(messID).Set(float64(current))
}
