package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/suar-net/pixel-exchange/internal/model"
)

const (
	maxUpstreamBodySize = 1 << 20 // 1 MB
	exchangeRPCPath     = "/rest/v1/rpc/exchange_post"
)

// RESTUpstream calls the exchange_post RPC over the data store's REST API.
type RESTUpstream struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

func NewRESTUpstream(baseURL, key string, timeout time.Duration) *RESTUpstream {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &RESTUpstream{
		baseURL: baseURL,
		key:     key,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

func (u *RESTUpstream) Exchange(ctx context.Context, req model.ExchangeRPCRequest) (*model.UpstreamResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rpc payload: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+exchangeRPCPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if u.key != "" {
		httpRequest.Header.Set("apikey", u.key)
		httpRequest.Header.Set("Authorization", "Bearer "+u.key)
	}

	httpResponse, err := u.httpClient.Do(httpRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("upstream request timed out: %w", err)
		}
		return nil, fmt.Errorf("failed to execute request to upstream: %w", err)
	}
	defer httpResponse.Body.Close()

	limitedReader := &io.LimitedReader{R: httpResponse.Body, N: maxUpstreamBodySize + 1}
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response body: %w", err)
	}
	if len(body) > maxUpstreamBodySize {
		return nil, fmt.Errorf("upstream response body exceeds %d bytes", maxUpstreamBodySize)
	}

	return &model.UpstreamResponse{
		StatusCode:  httpResponse.StatusCode,
		ContentType: httpResponse.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
