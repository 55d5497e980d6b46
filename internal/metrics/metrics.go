package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of orders cancelled",
	})

	OrdersReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_returned_total",
		Help: "Total number of return requests accepted",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of order creations rejected",
	}, []string{"reason"})

	CouponsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupons_applied_total",
		Help: "Total number of coupons applied to carts",
	})

	CouponsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupons_rejected_total",
		Help: "Total number of coupon applications rejected",
	}, []string{"reason"})

	CartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_added_total",
		Help: "Total number of items added to carts",
	})

	StockDecrementConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrement_conflicts_total",
		Help: "Total number of conditional stock decrements that found insufficient stock",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
