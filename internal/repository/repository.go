package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/suar-net/pixel-exchange/internal/model"
)

type IExchangeRepository interface {
	Exchange(ctx context.Context, req model.ExchangeRPCRequest) (*model.UpstreamResponse, error)
	Ping(ctx context.Context) error
}

// exchangeRepository calls the exchange_post procedure directly. The
// procedure owns the locking and pairing; this only marshals its result.
type exchangeRepository struct {
	db *sql.DB
}

func NewExchangeRepository(db *sql.DB) IExchangeRepository {
	return &exchangeRepository{db: db}
}

var nullBody = []byte("null")

func (r *exchangeRepository) Exchange(ctx context.Context, req model.ExchangeRPCRequest) (*model.UpstreamResponse, error) {
	query := `SELECT to_json(exchange_post($1, $2))::text`

	var result sql.NullString
	if err := r.db.QueryRowContext(ctx, query, req.NewTitle, req.NewPixels).Scan(&result); err != nil {
		return nil, fmt.Errorf("exchange_post: %w", err)
	}

	body, err := normalizeResult(result)
	if err != nil {
		return nil, err
	}
	return &model.UpstreamResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: body}, nil
}

// Ping lets the health check see the same pool the exchange uses.
func (r *exchangeRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// normalizeResult maps both SQL NULL and an all-null composite row to a JSON
// null, which is how the REST API reports "no partner".
func normalizeResult(result sql.NullString) ([]byte, error) {
	if !result.Valid {
		return nullBody, nil
	}

	var post map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result.String), &post); err != nil {
		return nil, fmt.Errorf("exchange_post returned malformed row: %w", err)
	}
	if id, ok := post["id"]; !ok || string(id) == "null" {
		return nullBody, nil
	}
	return []byte(result.String), nil
}
