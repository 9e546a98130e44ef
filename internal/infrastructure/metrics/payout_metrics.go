package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PayoutMetrics содержит метрики генерации и сопровождения выплат KOL
type PayoutMetrics struct {
	// Созданные выплаты
	PayoutsCreatedTotal prometheus.Counter
	PayoutsAmountTotal  prometheus.Counter

	// Пропущенные кандидаты по причинам
	CandidatesSkippedTotal *prometheus.CounterVec

	// Последний расчет кандидатов
	EligibleCandidates prometheus.Gauge
	EligibleAmount     prometheus.Gauge

	// Позиции с битыми связями в журнале заказов
	LedgerAnomaliesTotal *prometheus.CounterVec

	// Смена статусов
	StatusChangesTotal *prometheus.CounterVec

	// Время генерации
	GenerationDuration prometheus.Histogram

	// Ошибки
	ErrorsTotal *prometheus.CounterVec
}

// NewPayoutMetrics registers the collectors in reg.
func NewPayoutMetrics(reg prometheus.Registerer) *PayoutMetrics {
	factory := promauto.With(reg)
	return &PayoutMetrics{
		PayoutsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kol_payouts_created_total",
			Help: "Количество созданных выплат KOL",
		}),
		PayoutsAmountTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kol_payouts_amount_total",
			Help: "Общая сумма созданных выплат KOL",
		}),
		CandidatesSkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kol_payout_candidates_skipped_total",
			Help: "Количество кандидатов, пропущенных при генерации выплат",
		}, []string{"reason"}),
		EligibleCandidates: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kol_payout_eligible_candidates",
			Help: "Количество KOL с неоплаченной комиссией при последнем расчете",
		}),
		EligibleAmount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kol_payout_eligible_amount",
			Help: "Сумма неоплаченной комиссии при последнем расчете",
		}),
		LedgerAnomaliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kol_payout_ledger_anomalies_total",
			Help: "Позиции заказов без цены, ссылки или KOL",
		}, []string{"kind"}),
		StatusChangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kol_payout_status_changes_total",
			Help: "Количество смен статуса выплат",
		}, []string{"status"}),
		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kol_payout_generation_duration_seconds",
			Help:    "Длительность генерации пакета выплат",
			Buckets: prometheus.DefBuckets,
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kol_payout_errors_total",
			Help: "Ошибки операций с выплатами",
		}, []string{"operation"}),
	}
}

func (m *PayoutMetrics) RecordPayoutCreated(amount float64) {
	m.PayoutsCreatedTotal.Inc()
	m.PayoutsAmountTotal.Add(amount)
}

func (m *PayoutMetrics) RecordSkipped(reason string) {
	m.CandidatesSkippedTotal.WithLabelValues(reason).Inc()
}

func (m *PayoutMetrics) RecordEligible(candidates int, amount float64) {
	m.EligibleCandidates.Set(float64(candidates))
	m.EligibleAmount.Set(amount)
}

func (m *PayoutMetrics) RecordAnomaly(kind string) {
	m.LedgerAnomaliesTotal.WithLabelValues(kind).Inc()
}

func (m *PayoutMetrics) RecordStatusChange(status string) {
	m.StatusChangesTotal.WithLabelValues(status).Inc()
}

func (m *PayoutMetrics) RecordGenerationDuration(seconds float64) {
	m.GenerationDuration.Observe(seconds)
}

func (m *PayoutMetrics) RecordError(operation string) {
	m.ErrorsTotal.WithLabelValues(operation).Inc()
}
