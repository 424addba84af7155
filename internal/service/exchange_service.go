package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suar-net/pixel-exchange/internal/metrics"
	"github.com/suar-net/pixel-exchange/internal/model"
)

const (
	// UntitledPlaceholder is stored when a submission has no title.
	UntitledPlaceholder = "無題"

	logBodyPrefix = 256
)

// Upstream runs the pairing RPC. It reports whatever status the backend
// answered with; only transport problems are errors.
type Upstream interface {
	Exchange(ctx context.Context, req model.ExchangeRPCRequest) (*model.UpstreamResponse, error)
}

type ExchangeService struct {
	upstream Upstream
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func NewExchangeService(u Upstream, l *logrus.Logger, m *metrics.Metrics) *ExchangeService {
	return &ExchangeService{
		upstream: u,
		logger:   l,
		metrics:  m,
	}
}

// Exchange forwards a validated submission. Any upstream failure comes back
// as ErrUpstream; the details are logged here and nowhere else.
func (s *ExchangeService) Exchange(ctx context.Context, sub *model.ValidSubmission) (*model.UpstreamResponse, error) {
	pixels, err := json.Marshal(sub.Pixels)
	if err != nil {
		return nil, fmt.Errorf("%w: encode pixels: %v", ErrUpstream, err)
	}

	title := sub.Title
	if title == "" {
		title = UntitledPlaceholder
	}

	start := time.Now()
	resp, err := s.upstream.Exchange(ctx, model.ExchangeRPCRequest{
		NewTitle:  title,
		NewPixels: string(pixels),
	})
	s.metrics.ObserveUpstream(time.Since(start).Seconds())
	if err != nil {
		s.logger.WithError(err).Error("upstream exchange call failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   bodyPrefix(resp.Body),
		}).Error("upstream exchange returned an error status")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return resp, nil
}

func bodyPrefix(b []byte) string {
	if len(b) > logBodyPrefix {
		b = b[:logBodyPrefix]
	}
	return strings.ToValidUTF8(string(b), "")
}
