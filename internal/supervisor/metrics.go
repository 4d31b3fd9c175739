package supervisor

import "github.com/prometheus/client_golang/prometheus"

var (
	phaseGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "llmchat",
			Subsystem: "daemon",
			Name:      "phase",
			Help:      "Current startup phase of the daemon supervisor (1 for the active phase)",
		},
		[]string{"phase"},
	)

	healthProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmchat",
			Subsystem: "daemon",
			Name:      "health_probes_total",
			Help:      "Daemon health probes by result",
		},
		[]string{"result"},
	)

	modelPullsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmchat",
			Subsystem: "model",
			Name:      "pulls_total",
			Help:      "Model downloads by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(phaseGauge, healthProbesTotal, modelPullsTotal)
}

func setPhaseMetric(p Phase) {
	for _, q := range allPhases {
		v := 0.0
		if q == p {
			v = 1
		}
		phaseGauge.WithLabelValues(string(q)).Set(v)
	}
}
