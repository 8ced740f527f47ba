package http

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

var (
	errInvalidBody  = fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput)
	errInvalidQuery = fmt.Errorf("%w: parámetros de consulta inválidos", domain.ErrInvalidInput)
)

// errorMapper traduce la taxonomía de errores de dominio a respuestas HTTP.
type errorMapper struct {
	logger zerolog.Logger
}

func (m errorMapper) respond(c *fiber.Ctx, err error) error {
	status, body := m.classify(err)
	if status >= fiber.StatusInternalServerError {
		m.logger.Error().Err(err).Str("path", c.Path()).Str("company_id", GetCompanyID(c)).Msg("error interno")
	}
	return c.Status(status).JSON(body)
}

func (m errorMapper) classify(err error) (int, dto.ErrorResponse) {
	var (
		stockErr *domain.InsufficientStockError
		invErr   *domain.InvariantError
		nfErr    *domain.NotFoundError
		vErrs    validator.ValidationErrors
	)
	switch {
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	case errors.As(err, &vErrs):
		details := make(map[string]any, len(vErrs))
		for _, fe := range vErrs {
			details[fe.Field()] = fe.Tag()
		}
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details}
	case errors.As(err, &stockErr):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: stockErr.Error(),
			Details: map[string]any{
				"variant_id":   stockErr.VariantID,
				"warehouse_id": stockErr.WarehouseID,
				"available":    stockErr.Available,
				"requested":    stockErr.Requested,
			},
		}
	case errors.As(err, &invErr):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    "INVARIANT_VIOLATION",
			Message: invErr.Error(),
			Details: map[string]any{"rule": invErr.Rule},
		}
	case errors.As(err, &nfErr):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: nfErr.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"}
	case errors.Is(err, domain.ErrTransactionFailure):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "TRANSACTION_FAILED", Message: "la operación no se aplicó, intente de nuevo"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}
