package model

import "bytes"

// Payload of the upstream exchange_post RPC.
type ExchangeRPCRequest struct {
	NewTitle  string `json:"new_title"`
	NewPixels string `json:"new_pixels"` // JSON-encoded array of colors
}

// UpstreamResponse is relayed to the caller unchanged on success.
// A "null" or empty body means no partner was waiting.
type UpstreamResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Paired reports whether the upstream handed back a waiting partner.
func (r *UpstreamResponse) Paired() bool {
	b := bytes.TrimSpace(r.Body)
	return len(b) > 0 && !bytes.Equal(b, []byte("null"))
}
