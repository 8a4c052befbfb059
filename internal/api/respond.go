package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/auth"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/reports"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/sales"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// saleErrorResponse describes a refused sale precisely enough for the till to
// highlight the offending line.
type saleErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Line      *int   `json:"line,omitempty"`
	ItemID    int64  `json:"item_id,omitempty"`
	Requested string `json:"requested,omitempty"`
	Available string `json:"available,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// respondServiceError maps domain errors onto status codes. Unrecognized errors are
// logged and reported without detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var saleErr *sales.Error
	if errors.As(err, &saleErr) {
		respondSaleError(w, r, saleErr)
		return
	}

	switch {
	case errors.Is(err, database.ErrItemNotFound),
		errors.Is(err, database.ErrSaleNotFound),
		errors.Is(err, database.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidItem),
		errors.Is(err, database.ErrInvalidCursor),
		errors.Is(err, reports.ErrUnknownPeriod),
		errors.Is(err, auth.ErrInvalidAccount),
		errors.Is(err, auth.ErrPasswordTooLong):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrItemInUse),
		errors.Is(err, database.ErrUsernameTaken):
		respondError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidCredentials):
		respondError(w, r, http.StatusUnauthorized, err.Error())
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func respondSaleError(w http.ResponseWriter, r *http.Request, err *sales.Error) {
	body := saleErrorResponse{
		Error:  err.Error(),
		Code:   string(err.Kind),
		ItemID: err.ItemID,
	}
	if err.Line >= 0 {
		line := err.Line
		body.Line = &line
	}

	status := http.StatusBadRequest
	switch err.Kind {
	case sales.KindItemNotFound:
		status = http.StatusNotFound
	case sales.KindInsufficientStock:
		status = http.StatusConflict
		body.Requested = err.Requested.String()
		body.Available = err.Available.String()
	}

	respondJSON(w, r, status, body)
}
