package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the handler into a gorilla/mux router
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", h.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/accounts", h.CreateAccountHandler).Methods("POST")
	apiV1.HandleFunc("/accounts/{userID}/summary", h.GetAccountSummaryHandler).Methods("GET")
	apiV1.HandleFunc("/jobs/daily-accrual", h.RunDailyAccrualHandler).Methods("POST")
	apiV1.HandleFunc("/jobs/monthly-settlement", h.RunMonthlySettlementHandler).Methods("POST")

	return r
}
