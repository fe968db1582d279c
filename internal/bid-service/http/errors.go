package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/auth"
	"github.com/radieske/match-bid-platform/internal/bid-service/dto"
	"github.com/radieske/match-bid-platform/internal/bid-service/fixtures"
	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

// errBadRequest: corpo ilegível ou parâmetro de rota inválido
var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrMatchNotFound),
		errors.Is(err, ledger.ErrWagerNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrMatchLocked),
		errors.Is(err, ledger.ErrInvalidSelection),
		errors.Is(err, ledger.ErrBidLimitExceeded),
		errors.Is(err, ledger.ErrInvalidWinner),
		errors.Is(err, fixtures.ErrInvalidFixture),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrResultAlreadyConfirmed),
		errors.Is(err, ledger.ErrUsernameTaken),
		errors.Is(err, ledger.ErrMatchExists):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrForbidden),
		errors.Is(err, ledger.ErrMatchNotStarted):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError mapeia o erro para o status HTTP. 500 nunca expõe a mensagem interna.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		msg := "internal error"
		if ledger.IsIntegrity(err) {
			msg = "data integrity error"
		}
		s.log.Error(msg,
			zap.String("reqId", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, status, dto.ErrorResponse{Error: msg})
		return
	}

	resp := dto.ErrorResponse{Error: err.Error()}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		resp = dto.ErrorResponse{Error: "validation failed", Fields: formatValidation(verr)}
	}
	writeJSON(w, status, resp)
}

func formatValidation(verr validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verr))
	for _, e := range verr {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			out[field] = "this field is required"
		case "min":
			out[field] = fmt.Sprintf("must be at least %s", e.Param())
		case "max":
			out[field] = fmt.Sprintf("must be at most %s", e.Param())
		case "oneof":
			out[field] = fmt.Sprintf("must be one of: %s", e.Param())
		case "datetime":
			out[field] = fmt.Sprintf("must match layout %s", e.Param())
		case "nefield":
			out[field] = "teams must differ"
		default:
			out[field] = "invalid value"
		}
	}
	return out
}

// decode lê o JSON do corpo e valida as tags
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json body", errBadRequest)
	}
	return s.validate.Struct(dst)
}
