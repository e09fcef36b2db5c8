package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrUnknownLedger = errors.New("libro desconocido")

	// Fallas duras de captura: abortan la operación.
	ErrMissingSKU   = errors.New("debe ingresar un SKU")
	ErrInvalidRoute = errors.New("movimiento inválido: origen y destino deben ser distintos y la cantidad mayor a 0")

	// ErrConfirmationRequired indica advertencias pendientes de confirmar por el operador.
	ErrConfirmationRequired = errors.New("se requiere confirmación del operador")

	ErrCatalogLoad       = errors.New("error al cargar el catálogo")
	ErrStoreUnavailable  = errors.New("almacenamiento remoto no disponible")
	ErrUnsupportedFormat = errors.New("formato no soportado")
)
