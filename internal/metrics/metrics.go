package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

// Metrics holds the domain counters. It satisfies both services.LedgerObserver
// and services.ChatObserver.
type Metrics struct {
	MealsRecorded      *prometheus.CounterVec
	MealsDeleted       prometheus.Counter
	WaterLoggedML      prometheus.Counter
	LedgerSaveFailures *prometheus.CounterVec
	ChatTurns          *prometheus.CounterVec
	TagDecodeFailures  *prometheus.CounterVec
	StreakDays         prometheus.Gauge
}

func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		MealsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bitebuddy_meals_recorded_total",
			Help: "Meal summaries applied to the ledger by reconciliation rule",
		}, []string{"rule"}),
		MealsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bitebuddy_meals_deleted_total",
			Help: "Meal entries removed from the ledger",
		}),
		WaterLoggedML: factory.NewCounter(prometheus.CounterOpts{
			Name: "bitebuddy_water_logged_ml_total",
			Help: "Water added to the ledger in millilitres",
		}),
		LedgerSaveFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bitebuddy_ledger_save_failures_total",
			Help: "Failed ledger saves by operation",
		}, []string{"operation"}),
		ChatTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bitebuddy_chat_turns_total",
			Help: "Completed chat turns by status",
		}, []string{"status"}),
		TagDecodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bitebuddy_tag_decode_failures_total",
			Help: "Tag payloads that could not be decoded",
		}, []string{"tag"}),
		StreakDays: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bitebuddy_water_streak_days",
			Help: "Current hydration streak in days",
		}),
	}
}

func (m *Metrics) MealRecorded(rule services.MealRule) {
	m.MealsRecorded.WithLabelValues(string(rule)).Inc()
}

func (m *Metrics) MealDeleted() {
	m.MealsDeleted.Inc()
}

func (m *Metrics) WaterLogged(amountML int) {
	m.WaterLoggedML.Add(float64(amountML))
}

func (m *Metrics) LedgerSaveFailed(operation string) {
	m.LedgerSaveFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) TurnCompleted(status string) {
	m.ChatTurns.WithLabelValues(status).Inc()
}

func (m *Metrics) TagDecodeFailed(tag string) {
	m.TagDecodeFailures.WithLabelValues(tag).Inc()
}

func (m *Metrics) StreakChanged(days int) {
	m.StreakDays.Set(float64(days))
}
