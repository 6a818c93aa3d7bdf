// Package respond writes JSON responses and decodes JSON request bodies.
// Error bodies have the shape {"detail": "..."}.
package respond

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// ErrBadBody is returned by Decode for a missing, oversized, or malformed body.
var ErrBadBody = errors.New("invalid request body")

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Int("status", status), zap.Error(err))
	}
}

// Detail writes an error body.
func Detail(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorBody{Detail: detail})
}

// Decode reads a single JSON value from r's body into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", ErrBadBody)
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadBody)
		}
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrBadBody)
	}
	return nil
}

// StoreFailure answers for an error no handler-specific branch claimed:
// 503 when the store is unreachable, 500 otherwise.
func StoreFailure(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if errors.Is(err, docstore.ErrStoreUnavailable) {
		log.Warn(op+": store unavailable", zap.Error(err))
		Detail(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	log.Error(op+" failed", zap.Error(err))
	Detail(w, http.StatusInternalServerError, "Internal server error")
}
