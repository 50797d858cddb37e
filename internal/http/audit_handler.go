package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/roombot/internal/persistence"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type auditLister interface {
	ListAudit(ctx context.Context, limit int) ([]persistence.AuditEntry, error)
}

// AuditHandler exposes the processed-command log to administrators.
type AuditHandler struct {
	audit     auditLister
	responder responder
	logger    *slog.Logger
}

func NewAuditHandler(audit auditLister, logger *slog.Logger) *AuditHandler {
	base := defaultLogger(logger)
	return &AuditHandler{audit: audit, responder: newResponder(base), logger: base}
}

// List handles GET /admin/audit?limit=N.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.audit == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxAuditLimit {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = n
	}

	logger := handlerLogger(r.Context(), h.logger, "AuditHandler", "List", "limit", limit)
	entries, err := h.audit.ListAudit(r.Context(), limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "audit list failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}

	out := make([]auditDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditDTO{
			ID:            e.ID,
			RequesterID:   e.RequesterID,
			RequesterName: e.RequesterName,
			RawText:       e.RawText,
			CommandKind:   e.CommandKind,
			Success:       e.Success,
			Response:      e.Response,
			ErrorDetail:   e.ErrorDetail,
			SourceAddr:    e.SourceAddr,
			ElapsedMS:     e.ElapsedMS,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, auditResponse{Entries: out})
}

type auditResponse struct {
	Entries []auditDTO `json:"entries"`
}

type auditDTO struct {
	ID            int64  `json:"id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	RawText       string `json:"raw_text"`
	CommandKind   string `json:"command_kind"`
	Success       bool   `json:"success"`
	Response      string `json:"response"`
	ErrorDetail   string `json:"error_detail,omitempty"`
	SourceAddr    string `json:"source_addr,omitempty"`
	ElapsedMS     int64  `json:"elapsed_ms"`
	CreatedAt     string `json:"created_at"`
}
