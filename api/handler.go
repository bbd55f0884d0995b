package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cnote/config"
	"cnote/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnote_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cnote_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cnote_job_runs_total",
		Help: "Job trigger outcomes, labeled by job and result",
	}, []string{"job", "result"})
)

// Handler exposes the inquiry read path and the job trigger surface
type Handler struct {
	accounts    service.AccountService
	accruals    service.AccrualService
	settlements service.SettlementService
	inquiries   service.InquiryService
}

// NewHandler creates a new API handler
func NewHandler(accounts service.AccountService, accruals service.AccrualService, settlements service.SettlementService, inquiries service.InquiryService) *Handler {
	return &Handler{
		accounts:    accounts,
		accruals:    accruals,
		settlements: settlements,
		inquiries:   inquiries,
	}
}

type createAccountRequest struct {
	UserID         int64  `json:"user_id"`
	OpeningBalance string `json:"opening_balance"`
	AnnualRate     string `json:"annual_rate,omitempty"` // empty uses the configured default
}

type dailyAccrualRequest struct {
	UserID       int64  `json:"user_id"`
	BusinessDate string `json:"business_date"` // YYYY-MM-DD
}

type monthlySettlementRequest struct {
	UserID *int64 `json:"user_id,omitempty"` // nil settles all users
	Month  string `json:"month"`             // YYYY-MM
}

// accountSummaryResponse renders monetary amounts as decimal strings
type accountSummaryResponse struct {
	UserID             int64     `json:"userId"`
	CurrentBalance     string    `json:"currentBalance"`
	BalanceLastUpdated time.Time `json:"balanceLastUpdated"`
	InterestAccrued    string    `json:"interestAccrued"`
}

type dailyAccrualResponse struct {
	UserID            int64  `json:"userId"`
	BusinessDate      string `json:"businessDate"`
	InterestRate      string `json:"interestRate"`
	AccrualAmount     string `json:"accrualAmount"`
	PendingBalanceEOD string `json:"pendingBalanceEOD"`
	Settled           bool   `json:"settled"`
}

type settlementResponse struct {
	Settled       bool   `json:"settled"`
	MovementID    int64  `json:"movementId,omitempty"`
	TotalInterest string `json:"totalInterest,omitempty"`
	PeriodStart   string `json:"periodStart,omitempty"`
	PeriodEnd     string `json:"periodEnd,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// GetAccountSummaryHandler handles GET /api/v1/accounts/{userID}/summary
func (h *Handler) GetAccountSummaryHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("GET", "/accounts/{userID}/summary"))
	defer timer.ObserveDuration()

	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil {
		httpRequestsTotal.WithLabelValues("GET", "/accounts/{userID}/summary", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	summary, err := h.inquiries.GetAccountSummary(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpRequestsTotal.WithLabelValues("GET", "/accounts/{userID}/summary", "404").Inc()
			respondWithError(w, http.StatusNotFound, "Account not found")
			return
		}
		log.WithField("userID", userID).WithError(err).Error("Account summary failed")
		httpRequestsTotal.WithLabelValues("GET", "/accounts/{userID}/summary", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/accounts/{userID}/summary", "200").Inc()
	respondWithJSON(w, http.StatusOK, accountSummaryResponse{
		UserID:             summary.UserID,
		CurrentBalance:     summary.CurrentBalance.StringFixed(2),
		BalanceLastUpdated: summary.BalanceLastUpdated,
		InterestAccrued:    summary.InterestAccrued.StringFixed(2),
	})
}

// CreateAccountHandler handles POST /api/v1/accounts
func (h *Handler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/accounts", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	opening, err := decimal.NewFromString(req.OpeningBalance)
	if err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/accounts", "422").Inc()
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid opening balance")
		return
	}

	// Omitted rate falls back to the configured default
	var rate decimal.Decimal
	if req.AnnualRate == "" {
		rate = config.Get().DefaultAnnualRate
	} else {
		rate, err = decimal.NewFromString(req.AnnualRate)
		if err != nil {
			httpRequestsTotal.WithLabelValues("POST", "/accounts", "422").Inc()
			respondWithError(w, http.StatusUnprocessableEntity, "Invalid annual rate")
			return
		}
	}

	balance, err := h.accounts.CreateAccount(r.Context(), req.UserID, opening, rate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountExists):
			httpRequestsTotal.WithLabelValues("POST", "/accounts", "409").Inc()
			respondWithError(w, http.StatusConflict, "Account already exists")
		case errors.Is(err, service.ErrInvalidInput):
			httpRequestsTotal.WithLabelValues("POST", "/accounts", "422").Inc()
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.WithField("userID", req.UserID).WithError(err).Error("Account creation failed")
			httpRequestsTotal.WithLabelValues("POST", "/accounts", "500").Inc()
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/accounts", "201").Inc()
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"userId":         balance.UserID,
		"currentBalance": balance.CurrentBalance.StringFixed(2),
		"annualRate":     balance.AnnualInterestRate.String(),
	})
}

// RunDailyAccrualHandler handles POST /api/v1/jobs/daily-accrual.
// The external scheduler calls this once per business day per user;
// redeliveries are safe and return the already-recorded accrual.
func (h *Handler) RunDailyAccrualHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/jobs/daily-accrual"))
	defer timer.ObserveDuration()

	var req dailyAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/jobs/daily-accrual", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	businessDate, err := time.Parse("2006-01-02", req.BusinessDate)
	if err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/jobs/daily-accrual", "422").Inc()
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid business date, want YYYY-MM-DD")
		return
	}

	accrual, err := h.accruals.RunDailyAccrual(r.Context(), req.UserID, businessDate)
	if err != nil {
		jobRunsTotal.WithLabelValues("daily_accrual", "error").Inc()
		if errors.Is(err, service.ErrUserNotFound) {
			httpRequestsTotal.WithLabelValues("POST", "/jobs/daily-accrual", "404").Inc()
			respondWithError(w, http.StatusNotFound, "Account not found")
			return
		}
		log.WithFields(log.Fields{
			"userID":       req.UserID,
			"businessDate": req.BusinessDate,
		}).WithError(err).Error("Daily accrual job failed")
		httpRequestsTotal.WithLabelValues("POST", "/jobs/daily-accrual", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	jobRunsTotal.WithLabelValues("daily_accrual", "ok").Inc()
	httpRequestsTotal.WithLabelValues("POST", "/jobs/daily-accrual", "200").Inc()
	respondWithJSON(w, http.StatusOK, dailyAccrualResponse{
		UserID:            accrual.UserID,
		BusinessDate:      accrual.BusinessDate.Format("2006-01-02"),
		InterestRate:      accrual.InterestRate.String(),
		AccrualAmount:     accrual.AccrualAmount.StringFixed(2),
		PendingBalanceEOD: accrual.PendingBalanceEOD.StringFixed(2),
		Settled:           accrual.Settled,
	})
}

// RunMonthlySettlementHandler handles POST /api/v1/jobs/monthly-settlement.
// With a user_id it settles one user; without, it settles everyone.
func (h *Handler) RunMonthlySettlementHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/jobs/monthly-settlement"))
	defer timer.ObserveDuration()

	var req monthlySettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "422").Inc()
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid month, want YYYY-MM")
		return
	}

	if req.UserID == nil {
		result, err := h.settlements.RunMonthlySettlementBatch(r.Context(), month)
		if err != nil {
			jobRunsTotal.WithLabelValues("monthly_settlement", "error").Inc()
			log.WithField("month", req.Month).WithError(err).Error("Settlement batch failed")
			httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "500").Inc()
			respondWithError(w, http.StatusInternalServerError, "Settlement batch failed")
			return
		}
		jobRunsTotal.WithLabelValues("monthly_settlement", "ok").Inc()
		httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "200").Inc()
		respondWithJSON(w, http.StatusOK, result)
		return
	}

	movement, err := h.settlements.RunMonthlySettlement(r.Context(), *req.UserID, month)
	if err != nil {
		if errors.Is(err, service.ErrNoAccrualData) {
			// Already settled or never accrued: a safe no-op, not a failure
			jobRunsTotal.WithLabelValues("monthly_settlement", "noop").Inc()
			httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "200").Inc()
			respondWithJSON(w, http.StatusOK, settlementResponse{
				Settled: false,
				Reason:  "no unsettled accruals for month",
			})
			return
		}
		jobRunsTotal.WithLabelValues("monthly_settlement", "error").Inc()
		if errors.Is(err, service.ErrUserNotFound) {
			httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "404").Inc()
			respondWithError(w, http.StatusNotFound, "Account not found")
			return
		}
		log.WithFields(log.Fields{
			"userID": *req.UserID,
			"month":  req.Month,
		}).WithError(err).Error("Monthly settlement job failed")
		httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	jobRunsTotal.WithLabelValues("monthly_settlement", "ok").Inc()
	httpRequestsTotal.WithLabelValues("POST", "/jobs/monthly-settlement", "200").Inc()
	respondWithJSON(w, http.StatusOK, settlementResponse{
		Settled:       true,
		MovementID:    movement.ID,
		TotalInterest: movement.Amount.StringFixed(2),
		PeriodStart:   movement.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     movement.PeriodEnd.Format("2006-01-02"),
	})
}

// HealthCheckHandler handles GET /healthz
func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
