package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Dr-Musa/najah-realestate/internal/common/database"
	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/observability"
	"github.com/Dr-Musa/najah-realestate/internal/common/validation"
	"github.com/Dr-Musa/najah-realestate/internal/journal"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const transportHTTP = "http"

// Runner executes one search run.
type Runner interface {
	Run(ctx context.Context, query string) listing.Result
}

type RunJournal interface {
	Record(ctx context.Context, res listing.Result) error
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

type Options struct {
	Runner    Runner
	Validator *validation.Validator

	// Journal is optional; a write failure is logged and never fails the request.
	Journal        RunJournal
	Observability  *observability.Observability
	Checkers       []database.Checker
	ProviderName   string
	RequestTimeout time.Duration
	Logger         logger.Logger
}

type Handler struct {
	runner         Runner
	validator      *validation.Validator
	journal        RunJournal
	obs            *observability.Observability
	checkers       []database.Checker
	provider       string
	requestTimeout time.Duration
	logger         logger.Logger
}

func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	return &Handler{
		runner:         opts.Runner,
		validator:      opts.Validator,
		journal:        opts.Journal,
		obs:            opts.Observability,
		checkers:       opts.Checkers,
		provider:       opts.ProviderName,
		requestTimeout: opts.RequestTimeout,
		logger:         log.With(map[string]interface{}{"component": "httpapi"}),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz pings every backing store the service was started with.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	failures := database.CheckAll(r.Context(), 2*time.Second, h.checkers...)

	status := http.StatusOK
	body := map[string]string{}
	for _, c := range h.checkers {
		if c == nil {
			continue
		}
		if err, failed := failures[c.Name()]; failed {
			status = http.StatusServiceUnavailable
			body[c.Name()] = err.Error()
			continue
		}
		body[c.Name()] = "ok"
	}
	writeJSON(w, status, map[string]any{"ready": status == http.StatusOK, "checks": body})
}

func (h *Handler) SearchListings(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidSearchInput, err.Error())
		return
	}

	if h.validator != nil {
		result, err := h.validator.Validate(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, err.Error())
			return
		}
		if !result.Valid {
			writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidSearchInput,
				"request failed schema validation", result.GetErrorMessages()...)
			return
		}
	}

	query := listing.QueryFromRequest(req)
	if query == "" {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidSearchInput, "query, phone or filters must produce a search")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	res := h.runner.Run(ctx, query)
	h.obs.RecordRun(ctx, transportHTTP, res.Mode.String(), len(res.Listings), res.ProviderErr != nil, res.Duration)
	h.obs.RecordProviderCall(ctx, h.provider, providerStatus(res.ProviderErr))

	if h.journal != nil {
		// The request context may already be spent on a slow provider.
		jctx, jcancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := h.journal.Record(jctx, res); err != nil {
			h.logger.Warn("Run not journaled", map[string]interface{}{"run_id": res.RunID, "error": err.Error()})
		}
		jcancel()
	}

	writeJSON(w, http.StatusOK, models.NewSearchResponse(res.RunID, res.Mode.String(), res.Listings, req.Limit))
}

func (h *Handler) RecentRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read run journal", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeDatabaseConnectionFailed, "run journal unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": entries})
}

func providerStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperrors.CodeOf(err) == apperrors.ErrCodeProviderRateLimited:
		return "rate_limited"
	default:
		return "error"
	}
}
