package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

type subscriberCounter interface {
	Subscribers(kind entity.LedgerKind) int
}

type catalogSizer interface {
	Len() int
}

// StatusHandler estado del servicio: almacén activo y si hubo respaldo local.
type StatusHandler struct {
	store    string
	fallback bool
	subs     subscriberCounter
	catalog  catalogSizer
}

// NewStatusHandler construye el handler.
func NewStatusHandler(store string, fallback bool, subs subscriberCounter, catalog catalogSizer) *StatusHandler {
	return &StatusHandler{store: store, fallback: fallback, subs: subs, catalog: catalog}
}

// Status godoc
// @Summary      Estado del servicio
// @Tags         status
// @Produce      json
// @Success      200  {object}  dto.StatusResponse
// @Router       /api/status [get]
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	total := 0
	for _, k := range entity.LedgerKinds {
		total += h.subs.Subscribers(k)
	}
	return c.JSON(dto.StatusResponse{
		Store:        h.store,
		Fallback:     h.fallback,
		CatalogItems: h.catalog.Len(),
		Subscribers:  total,
	})
}
