package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/application/dto"
	appledger "github.com/jhoicas/control-v/internal/application/ledger"
	"github.com/jhoicas/control-v/internal/domain"
)

// respondError traduce errores de dominio a status HTTP y ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	var confErr *appledger.ConfirmationError
	if errors.As(err, &confErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ConfirmationRequiredResponse{
			Code:       "CONFIRMATION_REQUIRED",
			Message:    "confirme las advertencias y reenvíe con confirm=[códigos]",
			Advisories: confErr.Advisories,
		})
	}

	switch {
	case errors.Is(err, domain.ErrMissingSKU):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_SKU", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidRoute):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ROUTE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNSUPPORTED_FORMAT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "entrada no encontrada"})
	case errors.Is(err, domain.ErrUnknownLedger):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_LEDGER", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrCatalogLoad):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "CATALOG_LOAD", Message: err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: err.Error()})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
