package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/control-v/internal/application/catalog"
	"github.com/jhoicas/control-v/internal/application/dto"
)

const defaultSuggestLimit = 20

// CatalogHandler consultas y recarga del catálogo de productos (protegido).
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// Get godoc
// @Summary      Buscar en el catálogo
// @Description  Con sku devuelve la descripción (o "Descripción no encontrada"); con prefix devuelve sugerencias.
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        sku     query  string  false  "SKU exacto"
// @Param        prefix  query  string  false  "prefijo para autocompletar"
// @Param        limit   query  int     false  "máximo de sugerencias (defecto 20)"
// @Success      200  {object}  dto.CatalogLookupResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/catalog [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	if sku := strings.TrimSpace(c.Query("sku")); sku != "" {
		item, found := h.uc.Lookup(sku)
		return c.JSON(dto.CatalogLookupResponse{Item: item, Found: found})
	}
	prefix := strings.TrimSpace(c.Query("prefix"))
	if prefix == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "indique sku o prefix"})
	}
	limit := c.QueryInt("limit", defaultSuggestLimit)
	if limit <= 0 || limit > 200 {
		limit = defaultSuggestLimit
	}
	items := h.uc.Suggest(prefix, limit)
	return c.JSON(dto.CatalogSuggestResponse{Items: items, Total: len(items)})
}

// Reload godoc
// @Summary      Recargar catálogo
// @Description  Descarga CATALOG_URL y reemplaza el catálogo. Si falla, el catálogo vigente no cambia.
// @Description  source, si se envía, debe coincidir con la fuente configurada.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CatalogReloadRequest  false  "source: vacío o igual a CATALOG_URL"
// @Success      200  {object}  dto.CatalogReloadResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/catalog/reload [post]
func (h *CatalogHandler) Reload(c *fiber.Ctx) error {
	var in dto.CatalogReloadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.uc.ReloadConfigured(c.Context(), in.Source)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Scan godoc
// @Summary      Entrada desde lector de códigos
// @Description  Normaliza el texto leído como si se hubiera escrito en el campo indicado.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "target (sku, location, origin, destination) y code"
// @Success      200  {object}  dto.ScanResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/scan [post]
func (h *CatalogHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Scan(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
