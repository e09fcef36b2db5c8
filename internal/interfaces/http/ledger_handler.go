package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/control-v/internal/application/dto"
	appledger "github.com/jhoicas/control-v/internal/application/ledger"
	"github.com/jhoicas/control-v/internal/application/session"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

// sseKeepAlive intervalo de comentarios ": ping" para que proxies no corten el stream.
const sseKeepAlive = 20 * time.Second

// LedgerHandler maneja los libros de captura (protegido).
type LedgerHandler struct {
	uc       *appledger.UseCase
	sessions *session.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *appledger.UseCase, sessions *session.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc, sessions: sessions}
}

// Submit godoc
// @Summary      Registrar entrada
// @Description  Suma la cantidad al registro con la misma clave (sku+ubicación, o sku+origen+destino)
// @Description  o crea uno nuevo. Con advertencias sin confirmar responde 409 CONFIRMATION_REQUIRED.
// @Tags         ledgers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        ledger  path  string                  true  "picking | almacen | movimientos"
// @Param        body    body  dto.SubmitEntryRequest  true  "campos del formulario y confirmaciones"
// @Success      201   {object}  dto.SubmitEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ConfirmationRequiredResponse
// @Router       /api/ledgers/{ledger}/entries [post]
func (h *LedgerHandler) Submit(c *fiber.Ctx) error {
	sessionID := GetSessionID(c)
	var in dto.SubmitEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Submit(c.Context(), sessionID, GetLedger(c), in, h.sessions.Settings(sessionID))
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if out.Action == "merge" {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// List godoc
// @Summary      Listar entradas
// @Tags         ledgers
// @Security     Bearer
// @Produce      json
// @Param        ledger  path   string  true   "picking | almacen | movimientos"
// @Param        view    query  string  false  "aggregated = filas resumen"
// @Success      200  {object}  dto.EntryListResponse
// @Router       /api/ledgers/{ledger}/entries [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	if c.Query("view") == "aggregated" {
		return h.Rollup(c)
	}
	out, err := h.uc.List(c.Context(), GetLedger(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Rollup godoc
// @Summary      Resumen por producto
// @Description  Agrupa por SKU (o SKU+ruta en movimientos); REVISAR cuando un SKU está en más de una ubicación.
// @Tags         ledgers
// @Security     Bearer
// @Produce      json
// @Param        ledger  path  string  true  "picking | almacen | movimientos"
// @Success      200  {object}  dto.RollupListResponse
// @Router       /api/ledgers/{ledger}/rollup [get]
func (h *LedgerHandler) Rollup(c *fiber.Ctx) error {
	out, err := h.uc.Rollup(c.Context(), GetLedger(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar entrada
// @Tags         ledgers
// @Security     Bearer
// @Param        ledger  path  string  true  "picking | almacen | movimientos"
// @Param        id      path  string  true  "id de la entrada"
// @Success      200  {object}  dto.DeleteEntriesResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledgers/{ledger}/entries/{id} [delete]
func (h *LedgerHandler) Delete(c *fiber.Ctx) error {
	n, err := h.uc.Delete(c.Context(), GetLedger(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DeleteEntriesResponse{Deleted: n})
}

// DeleteMany godoc
// @Summary      Eliminar varias entradas o vaciar el libro
// @Tags         ledgers
// @Security     Bearer
// @Accept       json
// @Param        ledger  path  string                    true  "picking | almacen | movimientos"
// @Param        body    body  dto.DeleteEntriesRequest  true  "ids, o all=true"
// @Success      200  {object}  dto.DeleteEntriesResponse
// @Router       /api/ledgers/{ledger}/entries [delete]
func (h *LedgerHandler) DeleteMany(c *fiber.Ctx) error {
	var in dto.DeleteEntriesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	kind := GetLedger(c)
	if in.All {
		list, err := h.uc.List(c.Context(), kind)
		if err != nil {
			return respondError(c, err)
		}
		if err := h.uc.Clear(c.Context(), kind); err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.DeleteEntriesResponse{Deleted: list.Total})
	}
	n, err := h.uc.Delete(c.Context(), kind, in.IDs...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DeleteEntriesResponse{Deleted: n})
}

// Export godoc
// @Summary      Exportar resumen
// @Tags         ledgers
// @Security     Bearer
// @Produce      octet-stream
// @Param        ledger  path   string  true   "picking | almacen | movimientos"
// @Param        format  query  string  false  "csv (defecto) | xlsx | pdf"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledgers/{ledger}/export [get]
func (h *LedgerHandler) Export(c *fiber.Ctx) error {
	file, err := h.uc.Export(c.Context(), GetLedger(c), c.Query("format"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, contentDisposition(file.Filename))
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}

// Stream godoc
// @Summary      Cambios en tiempo real (SSE)
// @Description  Envía el libro completo como evento "snapshot" al conectar y en cada cambio.
// @Tags         ledgers
// @Security     Bearer
// @Produce      text/event-stream
// @Param        ledger        path   string  true   "picking | almacen | movimientos"
// @Param        access_token  query  string  false  "token para clientes EventSource"
// @Router       /api/ledgers/{ledger}/stream [get]
func (h *LedgerHandler) Stream(c *fiber.Ctx) error {
	kind := GetLedger(c)
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := h.uc.Subscribe(ctx, kind)
	if err != nil {
		cancel()
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(sseKeepAlive)
		defer ticker.Stop()
		for {
			select {
			case snap, ok := <-ch:
				if !ok {
					return
				}
				if err := writeSnapshot(w, kind, snap); err != nil {
					log.Debug().Err(err).Str("ledger", string(kind)).Msg("cliente SSE desconectado")
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// writeSnapshot escribe un evento SSE "snapshot" y hace flush.
func writeSnapshot(w *bufio.Writer, kind entity.LedgerKind, snap []entity.Entry) error {
	if snap == nil {
		snap = []entity.Entry{}
	}
	data, err := json.Marshal(dto.EntryListResponse{Ledger: kind, Items: snap, Total: len(snap)})
	if err != nil {
		return err
	}
	if err := writeEvent(w, "snapshot", data); err != nil {
		return err
	}
	return w.Flush()
}

func writeEvent(w io.Writer, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// contentDisposition header de descarga: filename sin acentos y filename* (RFC 6266) en UTF-8.
func contentDisposition(filename string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, filename)
	if err != nil {
		ascii = filename
	}
	ascii = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || r == '"' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, ascii)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(filename))
}
