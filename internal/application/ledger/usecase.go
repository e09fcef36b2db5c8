package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	domainledger "github.com/jhoicas/control-v/internal/domain/ledger"
	"github.com/jhoicas/control-v/internal/domain/repository"
)

// ConfirmationError advertencias que el operador debe confirmar antes de registrar.
type ConfirmationError struct {
	Advisories []domainledger.Advisory
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: %d advertencia(s) pendiente(s)", domain.ErrConfirmationRequired, len(e.Advisories))
}

// Unwrap permite errors.Is(err, domain.ErrConfirmationRequired).
func (e *ConfirmationError) Unwrap() error { return domain.ErrConfirmationRequired }

// Options reglas de captura globales.
type Options struct {
	LocationConflictCheck bool
}

// UseCase casos de uso de los libros: registrar, listar, eliminar, resumir y exportar.
type UseCase struct {
	store    repository.LedgerStore
	txRunner repository.LedgerTxRunner
	catalog  CatalogLookup
	exporter Exporter
	opts     Options
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	store repository.LedgerStore,
	txRunner repository.LedgerTxRunner,
	catalog CatalogLookup,
	exporter Exporter,
	opts Options,
) *UseCase {
	return &UseCase{
		store:    store,
		txRunner: txRunner,
		catalog:  catalog,
		exporter: exporter,
		opts:     opts,
		now:      time.Now,
	}
}

// Submit valida la entrada y, dentro de una transacción por libro+SKU, la suma al registro
// con la misma clave de identidad o la inserta. Si hay advertencias sin confirmar no escribe nada
// y devuelve *ConfirmationError.
func (uc *UseCase) Submit(
	ctx context.Context,
	sessionID string,
	kind entity.LedgerKind,
	in dto.SubmitEntryRequest,
	settings dto.SessionSettings,
) (*dto.SubmitEntryResponse, error) {
	v, err := domainledger.Validate(kind, in.Raw(), domainledger.Options{LocationRequired: settings.LocationRequired})
	if err != nil {
		return nil, err
	}
	confirmed := in.ConfirmedCodes()
	incoming := v.Entry
	incoming.CreatedBy = sessionID

	var (
		result     entity.Entry
		action     domainledger.Action
		advisories []domainledger.Advisory
	)
	err = uc.txRunner.Run(ctx, kind, incoming.SKU, func(tx repository.LedgerTx) error {
		snapshot, err := tx.List(ctx)
		if err != nil {
			return err
		}

		advisories = append([]domainledger.Advisory(nil), v.Advisories...)
		if uc.opts.LocationConflictCheck {
			if a, ok := domainledger.CheckLocationConflict(snapshot, incoming); ok {
				advisories = append(advisories, a)
			}
		}
		if pending := domainledger.Unconfirmed(advisories, confirmed); len(pending) > 0 {
			return &ConfirmationError{Advisories: pending}
		}

		action, err = domainledger.Reconcile(snapshot, incoming, domainledger.IdentityKeyFor(kind), uc.now())
		if err != nil {
			return err
		}
		switch action.Kind {
		case domainledger.ActionInsert:
			rec := action.Record
			if err := tx.Insert(ctx, &rec); err != nil {
				return err
			}
			result = rec
		case domainledger.ActionMerge:
			patch := entity.EntryPatch{Quantity: action.Quantity, RecordedAt: action.RecordedAt}
			if err := tx.Update(ctx, action.TargetID, patch); err != nil {
				return err
			}
			for _, e := range snapshot {
				if e.ID == action.TargetID {
					result = e
					break
				}
			}
			patch.Apply(&result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(action.Duplicates) > 0 {
		log.Warn().
			Str("ledger", string(kind)).
			Str("sku", incoming.SKU).
			Str("target", action.TargetID).
			Strs("duplicates", action.Duplicates).
			Msg("registros duplicados con la misma clave de identidad; se sumó al primero")
	}

	item, _ := uc.catalog.Lookup(result.SKU)
	return &dto.SubmitEntryResponse{
		Action:      action.Kind.String(),
		Entry:       result,
		Description: item.Description,
		Confirmed:   advisories,
	}, nil
}

// List devuelve las entradas del libro en orden de alta.
func (uc *UseCase) List(ctx context.Context, kind entity.LedgerKind) (*dto.EntryListResponse, error) {
	list, err := uc.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.Entry{}
	}
	return &dto.EntryListResponse{Ledger: kind, Items: list, Total: len(list)}, nil
}

// Rollup vista agregada del libro (por SKU, o por SKU+ruta en movimientos).
func (uc *UseCase) Rollup(ctx context.Context, kind entity.LedgerKind) (*dto.RollupListResponse, error) {
	list, err := uc.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	rollups := domainledger.Aggregate(kind, list)
	items := make([]dto.RollupDTO, 0, len(rollups))
	for _, r := range rollups {
		item, _ := uc.catalog.Lookup(r.SKU)
		items = append(items, dto.RollupDTO{
			Rollup:         r,
			LocationsLabel: r.LocationsLabel(),
			TXT:            r.TXT(),
			Description:    item.Description,
		})
	}
	return &dto.RollupListResponse{Ledger: kind, Items: items, Total: len(items)}, nil
}

// Delete elimina las entradas indicadas. Una fila agregada de movimientos se elimina pasando
// todos sus EntryIDs; los que otro dispositivo ya eliminó se omiten. Si ninguno existe devuelve domain.ErrNotFound.
func (uc *UseCase) Delete(ctx context.Context, kind entity.LedgerKind, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no se indicaron entradas", domain.ErrInvalidInput)
	}
	deleted, missing := 0, 0
	for _, id := range ids {
		err := uc.store.Remove(ctx, kind, id)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, domain.ErrNotFound):
			missing++
			log.Warn().Str("ledger", string(kind)).Str("id", id).Msg("entrada ya eliminada")
		default:
			return deleted, err
		}
	}
	if deleted == 0 && missing > 0 {
		return 0, domain.ErrNotFound
	}
	return deleted, nil
}

// Clear vacía el libro.
func (uc *UseCase) Clear(ctx context.Context, kind entity.LedgerKind) error {
	if err := uc.store.RemoveAll(ctx, kind); err != nil {
		return err
	}
	log.Info().Str("ledger", string(kind)).Msg("libro vaciado")
	return nil
}

// Subscribe snapshots del libro hasta que ctx termine.
func (uc *UseCase) Subscribe(ctx context.Context, kind entity.LedgerKind) (<-chan []entity.Entry, error) {
	return uc.store.Subscribe(ctx, kind)
}

// Export genera el archivo del libro en el formato pedido.
func (uc *UseCase) Export(ctx context.Context, kind entity.LedgerKind, format string) (*dto.ExportFile, error) {
	list, err := uc.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	return uc.exporter.Export(ctx, kind, domainledger.Aggregate(kind, list), format, uc.now())
}
