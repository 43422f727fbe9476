// Package metrics exposes workflow counters to Prometheus.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder receives workflow events from the service layer.
type Recorder interface {
	Booking(result string)
	Transition(from, to string)
	SlotCreated()
	VerificationDecided(decision string)
}

// Booking results.
const (
	BookingCreated     = "created"
	BookingUnavailable = "unavailable"
	BookingRejected    = "rejected"
)

// Nop discards every event.
type Nop struct{}

func (Nop) Booking(string)             {}
func (Nop) Transition(string, string)  {}
func (Nop) SlotCreated()               {}
func (Nop) VerificationDecided(string) {}

// Prometheus counts workflow events.
type Prometheus struct {
	bookings      *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	slots         prometheus.Counter
	verifications *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessons",
			Name:      "bookings_total",
			Help:      "Booking attempts by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessons",
			Name:      "appointment_transitions_total",
			Help:      "Appointment status transitions.",
		}, []string{"from", "to"}),
		slots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lessons",
			Name:      "slots_created_total",
			Help:      "Slots published by instructors.",
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lessons",
			Name:      "verification_decisions_total",
			Help:      "Admin verification decisions.",
		}, []string{"decision"}),
	}
	for _, c := range []prometheus.Collector{p.bookings, p.transitions, p.slots, p.verifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Booking(result string) { p.bookings.WithLabelValues(result).Inc() }

func (p *Prometheus) Transition(from, to string) { p.transitions.WithLabelValues(from, to).Inc() }

func (p *Prometheus) SlotCreated() { p.slots.Inc() }

func (p *Prometheus) VerificationDecided(decision string) {
	p.verifications.WithLabelValues(decision).Inc()
}
