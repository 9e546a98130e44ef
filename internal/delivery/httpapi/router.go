package httpapi

import (
	"context"
	"net/http"

	"github.com/LavaJover/kol-payout-service/internal/usecase/payout"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyFunc reports whether backing storage can serve requests.
type ReadyFunc func(ctx context.Context) error

type Handler struct {
	uc    payout.PayoutUsecase
	ready ReadyFunc
}

func NewHandler(uc payout.PayoutUsecase, ready ReadyFunc) *Handler {
	return &Handler{uc: uc, ready: ready}
}

func NewRouter(handler *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", handler.readyz)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/kol", func(r chi.Router) {
		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", handler.listPayouts)
			r.Get("/eligible", handler.getEligiblePayouts)
			r.Post("/generate", handler.generatePayouts)
			r.Get("/{payout_id}", handler.getPayoutDetails)
			r.Patch("/{payout_id}/status", handler.updatePayoutStatus)
		})
		r.Route("/influencers/{influencer_id}", func(r chi.Router) {
			r.Get("/payouts", handler.listInfluencerPayouts)
			r.Get("/sales-stats", handler.getSalesStats)
		})
		r.Post("/links/{link_id}/clicks", handler.recordClick)
	})
	return r
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "NOT_READY", err.Error())
			return
		}
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}
