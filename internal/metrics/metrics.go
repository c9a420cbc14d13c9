package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "candidate_session"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultRevoked = "revoked"

	MethodPassword  = "password"
	MethodOTP       = "otp"
	MethodBiometric = "biometric"

	ReasonBackgroundTimer  = "background_timer"
	ReasonBackgroundResume = "background_resume"

	DecisionAllow        = "allow"
	DecisionLogin        = "login"
	DecisionProfileSetup = "profile_setup"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	logins       *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
	forcedLogout *prometheus.CounterVec
	guard        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by method and result.",
		}, []string{"method", "result"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
		forcedLogout: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_logouts_total",
			Help:      "Sessions torn down after the background grace period.",
		}, []string{"reason"}),
		guard: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard outcomes.",
		}, []string{"decision"}),
	}
}

func (m *Metrics) Login(method string, ok bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, result(ok)).Inc()
}

func (m *Metrics) Refresh(res string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(res).Inc()
}

func (m *Metrics) ForcedLogout(reason string) {
	if m == nil {
		return
	}
	m.forcedLogout.WithLabelValues(reason).Inc()
}

func (m *Metrics) GuardDecision(decision string) {
	if m == nil {
		return
	}
	m.guard.WithLabelValues(decision).Inc()
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}
