// Package handlers implements the HTTP surface of the relay.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Qualiasolutions/theracoach/internal/config"
	"github.com/Qualiasolutions/theracoach/internal/i18n"
	"github.com/Qualiasolutions/theracoach/internal/middleware"
	"github.com/Qualiasolutions/theracoach/internal/models"
	"github.com/Qualiasolutions/theracoach/internal/persona"
	"github.com/Qualiasolutions/theracoach/internal/services/ai"
	"github.com/Qualiasolutions/theracoach/internal/validation"
)

// ChatHandler relays one chat request to the upstream completions endpoint
// and streams the decoded reply back as plain text. No conversation state
// survives the request.
type ChatHandler struct {
	cfg       *config.Config
	client    *ai.Client
	localizer *i18n.Localizer
	metrics   *middleware.Metrics
	logger    *logrus.Logger
}

// NewChatHandler creates the chat endpoint handler.
func NewChatHandler(cfg *config.Config, client *ai.Client, localizer *i18n.Localizer, metrics *middleware.Metrics, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		cfg:       cfg,
		client:    client,
		localizer: localizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleChat serves POST /api/chat. The rate limiter and the configuration
// gate have already run as middleware by the time this is called.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxBodyBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Debug("Failed to decode request body")
		h.metrics.RecordRequest("malformed_body")
		h.writeError(w, r, http.StatusBadRequest, i18n.MsgInvalidFormat)
		return
	}

	if err := validation.Validate(&req); err != nil {
		h.metrics.RecordRequest("invalid_request")
		h.writeError(w, r, http.StatusBadRequest, i18n.MsgInvalidRequest)
		return
	}

	messages := validation.Sanitize(req.Messages)
	prompt := persona.Assemble(req.Age())

	flusher, _ := w.(http.Flusher)
	started := false
	emit := func(fragment string) error {
		if !started {
			h.writeStreamHeader(w, r)
			started = true
		}
		if _, err := io.WriteString(w, fragment); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := h.client.Stream(r.Context(), prompt, messages, emit)
	if err != nil {
		if started {
			// The client already received a 200 and some fragments; all
			// that is left is to stop writing and let the stream close.
			h.logger.WithError(err).Warn("Stream aborted mid-flight")
			h.metrics.RecordRequest("stream_aborted")
			return
		}
		h.logger.WithError(err).Error("Upstream call failed")
		h.metrics.RecordRequest("upstream_error")
		h.writeError(w, r, http.StatusInternalServerError, i18n.MsgUpstreamError)
		return
	}

	if !started {
		// Upstream completed without emitting any content. Still a clean,
		// empty 200 stream.
		h.writeStreamHeader(w, r)
	}
	h.metrics.RecordRequest("success")
}

func (h *ChatHandler) writeStreamHeader(w http.ResponseWriter, r *http.Request) {
	if decision, ok := middleware.DecisionFromContext(r.Context()); ok {
		w.Header().Set(middleware.RateLimitHeaderRemaining, strconv.Itoa(decision.Remaining))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

func (h *ChatHandler) writeError(w http.ResponseWriter, r *http.Request, status int, messageID string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintln(w, h.localizer.Get(r.Header.Get("Accept-Language"), messageID))
}
