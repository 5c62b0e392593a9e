package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "secure_chat"

// Metrics holds the Prometheus collectors of the membership and message services.
type Metrics struct {
	Transitions       *prometheus.CounterVec
	MessagesSent      prometheus.Counter
	MessagesDelivered prometheus.Counter
	MessagesCensored  prometheus.Counter
	CryptoFailures    *prometheus.CounterVec
	GroupsCreated     prometheus.Counter
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "membership_transitions_total",
			Help:      "Membership operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages encrypted and persisted",
		}),
		MessagesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Messages decrypted for a reader",
		}),
		MessagesCensored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_censored_total",
			Help:      "Messages altered by moderation before encryption",
		}),
		CryptoFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crypto_failures_total",
			Help:      "Encryption or decryption failures",
		}, []string{"direction"}),
		GroupsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_created_total",
			Help:      "Groups created",
		}),
	}
}

// ObserveTransition records the result of a membership operation.
// outcome is "ok" or the rejection reason.
func (m *Metrics) ObserveTransition(operation, outcome string) {
	m.Transitions.WithLabelValues(operation, outcome).Inc()
}
