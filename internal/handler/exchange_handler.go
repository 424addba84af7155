package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/suar-net/pixel-exchange/internal/metrics"
	"github.com/suar-net/pixel-exchange/internal/model"
	"github.com/suar-net/pixel-exchange/internal/moderation"
	"github.com/suar-net/pixel-exchange/internal/service"
)

const maxSubmissionBytes = 16 << 10

// ExchangeService is what the handler needs from the service layer.
type ExchangeService interface {
	Exchange(ctx context.Context, sub *model.ValidSubmission) (*model.UpstreamResponse, error)
}

// ExchangeHandler parses, validates and forwards one submission. Origin and
// rate-limit checks have already run by the time it is reached.
type ExchangeHandler struct {
	service ExchangeService
	words   *moderation.WordSet
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

func NewExchangeHandler(s ExchangeService, words *moderation.WordSet, l *logrus.Logger, m *metrics.Metrics) *ExchangeHandler {
	return &ExchangeHandler{
		service: s,
		words:   words,
		logger:  l,
		metrics: m,
	}
}

func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err != nil {
		h.metrics.IncOutcome(metrics.OutcomeBadRequest)
		respondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var sub model.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		h.metrics.IncOutcome(metrics.OutcomeBadRequest)
		respondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	valid, err := service.ValidateSubmission(&sub, h.words)
	if err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			h.logger.WithError(err).Error("unexpected validation failure")
			respondWithError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if errors.Is(err, service.ErrModerated) {
			h.metrics.IncOutcome(metrics.OutcomeModerated)
		} else {
			h.metrics.IncOutcome(metrics.OutcomeBadRequest)
		}
		respondWithError(w, http.StatusBadRequest, verr.Reason)
		return
	}

	// The pairing call is atomic upstream; a caller hanging up should not
	// abort it halfway through the round trip.
	resp, err := h.service.Exchange(context.WithoutCancel(r.Context()), valid)
	if err != nil {
		h.metrics.IncOutcome(metrics.OutcomeUpstreamErr)
		respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if resp.Paired() {
		h.metrics.IncOutcome(metrics.OutcomePaired)
	} else {
		h.metrics.IncOutcome(metrics.OutcomeWaiting)
	}
	respondWithRaw(w, resp.StatusCode, resp.ContentType, resp.Body)
}
