package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/snaplead-api/internal/api/shared"
	"github.com/phrazzld/snaplead-api/internal/domain"
)

// Listing bounds for the operator endpoint
const (
	defaultLeadPageSize = 50
	maxLeadPageSize     = 200
)

// LeadLister is the lead listing surface the handler depends on.
type LeadLister interface {
	ListLeads(ctx context.Context, limit, offset int) ([]*domain.Lead, error)
}

// LeadHandler handles the operator-facing lead endpoints.
type LeadHandler struct {
	leads  LeadLister
	logger *slog.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leads LeadLister, logger *slog.Logger) *LeadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadHandler{
		leads:  leads,
		logger: logger.With(slog.String("component", "lead_handler")),
	}
}

// ListLeads handles GET /api/leads requests with optional limit and offset
// query parameters. Results come back newest-first.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLeadPageSize)
	offset := queryInt(r, "offset", 0)

	if limit < 1 || limit > maxLeadPageSize {
		shared.RespondWithError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
		return
	}
	if offset < 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "offset must not be negative")
		return
	}

	leads, err := h.leads.ListLeads(r.Context(), limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list leads", err)
		return
	}
	if leads == nil {
		leads = []*domain.Lead{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LeadListResponse{
		Leads:  leads,
		Limit:  limit,
		Offset: offset,
	})
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
