package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

// LocalLedger key de Fiber Locals para el libro resuelto desde la ruta.
const LocalLedger = "ledger"

// RequireLedger resuelve el parámetro :ledger (acepta alias en inglés) y responde 404
// si no corresponde a ningún libro.
func RequireLedger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, ok := entity.ParseLedgerKind(c.Params("ledger"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "UNKNOWN_LEDGER",
				Message: "libro '" + c.Params("ledger") + "' desconocido (picking, almacen o movimientos)",
			})
		}
		c.Locals(LocalLedger, kind)
		return c.Next()
	}
}

// GetLedger devuelve el libro del contexto (después de RequireLedger).
func GetLedger(c *fiber.Ctx) entity.LedgerKind {
	kind, _ := c.Locals(LocalLedger).(entity.LedgerKind)
	return kind
}
