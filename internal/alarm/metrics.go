package alarm

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sweepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coin_alarm",
		Subsystem: "bot",
		Name:      "sweeps_total",
		Help:      "The total number of completed alarm sweeps per alarm kind",
	}, []string{"kind"})

	sweepsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coin_alarm",
		Subsystem: "bot",
		Name:      "sweeps_skipped",
		Help:      "Sweep invocations skipped because the previous one was still running",
	}, []string{"job"})

	// AlarmsEvaluated counts every alarm rule evaluated against fresh market
	// data. Exported so the entry point can persist it across restarts.
	AlarmsEvaluated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coin_alarm",
		Subsystem: "bot",
		Name:      "alarms_evaluated",
		Help:      "The total number of alarm rules evaluated",
	})

	// NotificationsSent counts successfully delivered alarm messages.
	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coin_alarm",
		Subsystem: "bot",
		Name:      "notifications_sent",
		Help:      "The total number of alarm notifications delivered",
	})

	fetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coin_alarm",
		Subsystem: "bot",
		Name:      "fetch_errors",
		Help:      "Market data fetches that failed and were skipped for one cycle",
	})

	deliveryErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coin_alarm",
		Subsystem: "bot",
		Name:      "delivery_errors",
		Help:      "Notification sends that failed",
	})
)

func init() {
	prometheus.MustRegister(
		sweepsTotal,
		sweepsSkipped,
		AlarmsEvaluated,
		NotificationsSent,
		fetchErrors,
		deliveryErrors,
	)
}
