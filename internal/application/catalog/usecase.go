package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
	"github.com/jhoicas/control-v/internal/domain/repository"
)

// Source obtiene y decodifica un catálogo desde una URL o archivo.
type Source interface {
	Load(ctx context.Context, source string) (entity.Catalog, error)
}

// UseCase mantiene el catálogo vigente en memoria. Las recargas lo reemplazan completo
// de forma atómica: si algo falla, el catálogo anterior sigue activo.
type UseCase struct {
	source        Source
	store         repository.CatalogStore
	defaultSource string

	reloadMu sync.Mutex
	current  atomic.Pointer[entity.Catalog]
}

// NewUseCase construye el caso de uso. defaultSource es la fuente usada cuando la recarga no indica otra.
func NewUseCase(source Source, store repository.CatalogStore, defaultSource string) *UseCase {
	uc := &UseCase{source: source, store: store, defaultSource: strings.TrimSpace(defaultSource)}
	empty := entity.Catalog{}
	uc.current.Store(&empty)
	return uc
}

// Init carga el catálogo persistido y, si hay fuente por defecto, intenta refrescarlo.
// Una falla al refrescar se registra y se conserva lo persistido.
func (uc *UseCase) Init(ctx context.Context) error {
	stored, err := uc.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("cargar catálogo persistido: %w", err)
	}
	uc.current.Store(&stored)
	log.Info().Int("items", len(stored)).Msg("catálogo persistido cargado")

	if uc.defaultSource == "" {
		return nil
	}
	if _, err := uc.Reload(ctx, ""); err != nil {
		log.Warn().Err(err).Str("source", uc.defaultSource).Msg("no se pudo refrescar el catálogo, se usa el persistido")
	}
	return nil
}

// Reload obtiene el catálogo desde source (o la fuente por defecto), lo persiste y lo activa.
func (uc *UseCase) Reload(ctx context.Context, source string) (*dto.CatalogReloadResponse, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = uc.defaultSource
	}
	if source == "" {
		return nil, fmt.Errorf("%w: no hay fuente de catálogo configurada", domain.ErrCatalogLoad)
	}

	uc.reloadMu.Lock()
	defer uc.reloadMu.Unlock()

	next, err := uc.source.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Replace(ctx, next); err != nil {
		return nil, fmt.Errorf("persistir catálogo: %w", err)
	}
	uc.current.Store(&next)
	log.Info().Str("source", source).Int("items", len(next)).Msg("catálogo recargado")
	return &dto.CatalogReloadResponse{Source: source, Items: len(next)}, nil
}

// ReloadConfigured recarga solo desde la fuente configurada (CATALOG_URL). requested puede venir
// vacío o repetir esa fuente; cualquier otra se rechaza para que un cliente no haga leer al
// servidor archivos o URLs arbitrarias. Las rutas locales quedan para cmd/load_catalog.
func (uc *UseCase) ReloadConfigured(ctx context.Context, requested string) (*dto.CatalogReloadResponse, error) {
	if requested = strings.TrimSpace(requested); requested != "" && requested != uc.defaultSource {
		return nil, fmt.Errorf("%w: solo se permite recargar desde la fuente configurada", domain.ErrInvalidInput)
	}
	return uc.Reload(ctx, "")
}

// Current catálogo vigente (no modificar).
func (uc *UseCase) Current() entity.Catalog {
	return *uc.current.Load()
}

// Len cantidad de productos del catálogo vigente.
func (uc *UseCase) Len() int {
	return len(uc.Current())
}

// Lookup busca un SKU; ausente devuelve descripción desconocida y found=false.
func (uc *UseCase) Lookup(sku string) (entity.CatalogItem, bool) {
	return uc.Current().Lookup(sku)
}

// Suggest SKUs que comienzan con prefix.
func (uc *UseCase) Suggest(prefix string, limit int) []entity.CatalogItem {
	return uc.Current().Suggest(prefix, limit)
}

// Scan normaliza el texto leído por el lector de códigos como si se hubiera escrito en el campo target.
func (uc *UseCase) Scan(req dto.ScanRequest) (*dto.ScanResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: código vacío", domain.ErrInvalidInput)
	}
	target := strings.ToLower(strings.TrimSpace(req.Target))
	resp := &dto.ScanResponse{Target: target}
	switch target {
	case "", "sku":
		resp.Target = "sku"
		item, found := uc.Lookup(code)
		resp.Value = item.SKU
		resp.Item = &item
		resp.Found = found
	case "location":
		resp.Value = ledger.NormalizeLocation(code)
	case "origin", "destination":
		resp.Value = code
	default:
		return nil, fmt.Errorf("%w: destino de escaneo %q", domain.ErrInvalidInput, req.Target)
	}
	return resp, nil
}
