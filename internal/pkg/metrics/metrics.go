package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 业务核心指标。两个并发敏感路径（预约、结算）各自暴露成功/冲突计数，
// 便于在压测时观察锁竞争下的拒绝率。
var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_reservations_created_total",
		Help: "Number of reservations successfully created.",
	})

	ReservationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_reservation_conflicts_total",
		Help: "Number of reservation attempts rejected because the slot was taken.",
	})

	Checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_checkouts_total",
		Help: "Number of checkout attempts by final result.",
	}, []string{"result"})

	SagaCompensations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_saga_compensations_total",
		Help: "Number of compensation actions executed by the checkout saga.",
	})

	CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campus_checkout_duration_seconds",
		Help:    "End-to-end duration of checkout saga runs.",
		Buckets: prometheus.DefBuckets,
	})
)
