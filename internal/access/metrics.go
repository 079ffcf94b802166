package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_access_decisions_total",
		Help: "Access decisions by action, outcome and denial reason.",
	}, []string{"action", "outcome", "reason"})

	entitlementChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_entitlement_checks_total",
		Help: "Download entitlement checks by result.",
	}, []string{"result"})
)

func recordDecision(action Action, d Decision) {
	outcome := "deny"
	if d.Allowed {
		outcome = "allow"
	}
	decisionsTotal.WithLabelValues(string(action), outcome, string(d.Reason)).Inc()
}
