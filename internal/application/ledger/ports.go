package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain/entity"
	domainledger "github.com/jhoicas/control-v/internal/domain/ledger"
)

// CatalogLookup resuelve la descripción de un SKU.
type CatalogLookup interface {
	Lookup(sku string) (entity.CatalogItem, bool)
}

// Exporter genera el archivo de exportación de las filas resumen.
type Exporter interface {
	Export(ctx context.Context, kind entity.LedgerKind, rollups []domainledger.Rollup, format string, now time.Time) (*dto.ExportFile, error)
}
