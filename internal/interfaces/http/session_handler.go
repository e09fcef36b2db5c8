package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/application/session"
)

// SessionHandler sesiones anónimas y sus ajustes.
type SessionHandler struct {
	uc *session.UseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *session.UseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// Anonymous godoc
// @Summary      Iniciar sesión anónima
// @Tags         auth
// @Produce      json
// @Success      201  {object}  dto.AnonymousSessionResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/auth/anonymous [post]
func (h *SessionHandler) Anonymous(c *fiber.Ctx) error {
	out, err := h.uc.StartAnonymous()
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetSettings godoc
// @Summary      Ajustes de la sesión
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionSettings
// @Router       /api/session/settings [get]
func (h *SessionHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.uc.Settings(GetSessionID(c)))
}

// UpdateSettings godoc
// @Summary      Cambiar ajustes de la sesión
// @Description  location_required=false desactiva la advertencia de ubicación faltante para esta sesión.
// @Tags         session
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateSessionSettingsRequest  true  "ajustes"
// @Success      200  {object}  dto.SessionSettings
// @Router       /api/session/settings [put]
func (h *SessionHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.UpdateSessionSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	return c.JSON(h.uc.UpdateSettings(GetSessionID(c), in))
}
