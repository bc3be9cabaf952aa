package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ymorita/store-directory/internal/domain"
)

// errorResponse is the error body shape: {"detail": "<message>"}.
type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps a classified domain error to its HTTP status and fixed
// user-facing message. Validation failures map to 404, not 400/422; the
// API has always answered that way and clients depend on it.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusNotFound, "リクエストの値が不正です"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "該当する店舗が存在しません"
	case errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusNotFound, "該当する住所が見つかりません"
	case errors.Is(err, domain.ErrGeocoderUnreachable):
		return http.StatusBadRequest, "国土地理院APIから応答がありません"
	case errors.Is(err, domain.ErrGeocoderFault):
		return http.StatusInternalServerError, "国土地理院APIへのリクエストが失敗しました"
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusBadRequest, "データ整合性の問題が発生しました"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "データベースに接続できません"
	default:
		// ErrStorageSchema and anything unclassified.
		return http.StatusInternalServerError, "サーバーエラーが発生しました"
	}
}

// writeError logs the failure with its operation context and writes the
// mapped status with a {"detail": ...} body.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, detail := statusFor(err)

	log := slog.Default()
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "operation", operation, "status", status, "error", err)
	} else {
		log.WarnContext(r.Context(), "request rejected", "operation", operation, "status", status, "error", err)
	}

	writeJSON(w, r, status, errorResponse{Detail: detail})
}

// validationError wraps a request-decoding problem in the validation
// sentinel so it takes the 404 path like every other malformed input.
func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// writeJSON writes v as a JSON body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().ErrorContext(r.Context(), "encode response", "error", err)
	}
}
