package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/example/roombot/internal/application"
)

const (
	maxWebhookBody     = 16 << 10
	rateLimitedMessage = "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."
)

type commandHandler interface {
	Handle(ctx context.Context, req application.Request) application.Result
}

// requestLimiter is satisfied by *RateLimiter.
type requestLimiter interface {
	Allow(key string) bool
}

// WebhookHandler adapts chat outgoing-webhook calls to the command pipeline.
type WebhookHandler struct {
	commands     commandHandler
	token        string
	triggerWords []string
	limiter      requestLimiter
	responder    responder
	logger       *slog.Logger
}

// WebhookConfig wires a WebhookHandler. Limiter is optional.
type WebhookConfig struct {
	Commands     commandHandler
	Token        string
	TriggerWords []string
	Limiter      requestLimiter
	Logger       *slog.Logger
}

func NewWebhookHandler(cfg WebhookConfig) *WebhookHandler {
	base := defaultLogger(cfg.Logger)
	return &WebhookHandler{
		commands:     cfg.Commands,
		token:        cfg.Token,
		triggerWords: cfg.TriggerWords,
		limiter:      cfg.Limiter,
		responder:    newResponder(base),
		logger:       base,
	}
}

func (h *WebhookHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WebhookHandler", operation, attrs...)
}

// Receive handles POST /webhook.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.commands == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req webhookRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&req); err != nil {
		h.log(r.Context(), "Receive", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode webhook payload", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.token)) != 1 {
		h.log(r.Context(), "Receive", "error_kind", "unauthorized").WarnContext(r.Context(), "webhook token mismatch")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, nil)
		return
	}

	requesterID := strings.ToLower(strings.TrimSpace(req.WriterEmail))
	if requesterID == "" {
		requesterID = strings.TrimSpace(req.WriterID)
	}
	logger := h.log(r.Context(), "Receive", "requester_id", requesterID)

	if requesterID == "" {
		logger.WarnContext(r.Context(), "webhook without requester identity")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if h.limiter != nil && !h.limiter.Allow(requesterID) {
		logger.WarnContext(r.Context(), "requester rate limited")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, webhookResponse{
			Body:         rateLimitedMessage,
			ConnectColor: application.ColorFailure,
		})
		return
	}

	result := h.commands.Handle(r.Context(), application.Request{
		RequesterName: strings.TrimSpace(req.WriterName),
		RequesterID:   requesterID,
		Text:          stripTrigger(req.Text, h.triggerWords),
		SourceAddr:    clientAddr(r),
	})

	logger.With("kind", string(result.Kind), "success", result.Success).DebugContext(r.Context(), "webhook answered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWebhookResponse(result))
}

// stripTrigger removes the first matching trigger word (case-insensitive) from the
// start of text along with separating whitespace or punctuation.
func stripTrigger(text string, triggers []string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, trigger := range triggers {
		t := strings.ToLower(strings.TrimSpace(trigger))
		if t == "" || !strings.HasPrefix(lower, t) {
			continue
		}
		rest := trimmed[len(t):]
		if rest != "" {
			next := []rune(rest)[0]
			if !unicode.IsSpace(next) && next != ':' && next != ',' {
				continue
			}
		}
		return strings.TrimLeftFunc(rest, func(r rune) bool {
			return unicode.IsSpace(r) || r == ':' || r == ','
		})
	}
	return trimmed
}

type webhookRequest struct {
	Token       string `json:"token"`
	WriterID    string `json:"writerId"`
	WriterName  string `json:"writerName"`
	WriterEmail string `json:"writerEmail"`
	Text        string `json:"text"`
	Keyword     string `json:"keyword"`
}

type webhookResponse struct {
	Body         string        `json:"body"`
	ConnectColor string        `json:"connectColor"`
	ConnectInfo  []connectInfo `json:"connectInfo,omitempty"`
}

type connectInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func toWebhookResponse(result application.Result) webhookResponse {
	resp := webhookResponse{Body: result.Message, ConnectColor: result.Color}
	if booking, ok := result.Data.(application.BookingView); ok {
		resp.ConnectInfo = []connectInfo{{
			Title:       "예약번호 " + booking.ID,
			Description: booking.RoomName + " " + booking.Date + " " + booking.Start + "~" + booking.End,
		}}
	}
	return resp
}
