package prices

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/handlers/respond"
	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/services/pricesync"
	"github.com/de-tools/tco-atlas/pkg/store/duckdb/history"
	"github.com/rs/zerolog"
)

type Syncer interface {
	Sync(ctx context.Context, opts pricesync.SyncOptions) (map[string]*float64, error)
	History(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

type Handler struct {
	syncer Syncer
}

func NewHandler(syncer Syncer) *Handler {
	return &Handler{syncer: syncer}
}

// Sync runs a refresh now, detached from the request context.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.InvalidInput(w, r, map[string]string{"body": "request body must be a JSON object"})
		return
	}

	prices, err := h.syncer.Sync(context.WithoutCancel(ctx), pricesync.SyncOptions{
		WriteBack: req.WriteBack,
		Location:  req.Location,
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			respond.InvalidInput(w, r, verr.Fields)
		case errors.Is(err, domain.ErrPricingSourceUnavailable):
			logger.Warn().Err(err).Msg("price sync failed")
			respond.Error(w, r, http.StatusServiceUnavailable, respond.MsgSourceDegraded, nil)
		default:
			logger.Error().Err(err).Msg("price sync failed")
			respond.InternalError(w, r)
		}
		return
	}

	priced := 0
	for _, p := range prices {
		if p != nil {
			priced++
		}
	}

	respond.JSON(w, r, http.StatusOK, api.SyncResponse{
		Total:  len(prices),
		Priced: priced,
		Prices: prices,
	})
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.InvalidInput(w, r, map[string]string{"limit": "must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := h.syncer.History(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list price sync runs")
		respond.InternalError(w, r)
		return
	}

	response := make([]api.SyncRun, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapSyncRunDomainToApi(run))
	}
	respond.JSON(w, r, http.StatusOK, response)
}
