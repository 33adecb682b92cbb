package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"nft-ledger/internal/domain"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode response")
	}
}

// writeError renders a domain error as {"error": CODE, "message": detail}.
// Anything without a code is logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "INTERNAL_ERROR",
			Message: "internal server error",
		})
		return
	}

	status := statusFor(derr.Code)
	event := zerolog.Ctx(r.Context()).Info()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("code", string(derr.Code)).Int("status", status).Msg("request rejected")

	writeJSON(w, r, status, errorResponse{Error: string(derr.Code), Message: derr.Detail})
}

func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeInvalidTier:
		return http.StatusBadRequest
	case domain.CodeMintingInactive,
		domain.CodeMintingNotStarted,
		domain.CodeMintingEnded,
		domain.CodeMaxSupplyReached,
		domain.CodeClaimCodeAlreadyUsed,
		domain.CodeClaimCodeExpired,
		domain.CodeClaimCodeRevoked,
		domain.CodeWalletMismatch,
		domain.CodeUnauthorized,
		domain.CodeOwnershipVerificationFailed:
		return http.StatusForbidden
	case domain.CodeCardanoNotConfigured, domain.CodeCardanoInvalidNetwork:
		return http.StatusServiceUnavailable
	}

	switch code.Kind() {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPolicy:
		return http.StatusConflict
	case domain.KindInput:
		return http.StatusBadRequest
	case domain.KindUpstream:
		return http.StatusBadGateway
	case domain.KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON request body into dst. Unknown fields are ignored.
func decode(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err != nil {
		return domain.Wrap(domain.CodeMissingParameters, err, "request body is not valid JSON")
	}
	return nil
}

func missing(names string) error {
	return domain.Errorf(domain.CodeMissingParameters, "%s required", names)
}
