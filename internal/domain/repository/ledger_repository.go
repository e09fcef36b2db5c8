package repository

import (
	"context"

	"github.com/jhoicas/control-v/internal/domain/entity"
)

// LedgerStore define el puerto de persistencia de los libros (remoto en tiempo real o local).
// El núcleo es agnóstico a la implementación.
type LedgerStore interface {
	// Name identifica la implementación activa ("postgres", "redis", "local").
	Name() string
	List(ctx context.Context, kind entity.LedgerKind) ([]entity.Entry, error)
	// Subscribe entrega el snapshot completo del libro cada vez que cambia. El canal se cierra al cancelar ctx.
	Subscribe(ctx context.Context, kind entity.LedgerKind) (<-chan []entity.Entry, error)
	Insert(ctx context.Context, kind entity.LedgerKind, e *entity.Entry) error
	Update(ctx context.Context, kind entity.LedgerKind, id string, patch entity.EntryPatch) error
	Remove(ctx context.Context, kind entity.LedgerKind, id string) error
	RemoveAll(ctx context.Context, kind entity.LedgerKind) error
}

// LedgerTx operaciones disponibles dentro de una transacción de conciliación.
type LedgerTx interface {
	List(ctx context.Context) ([]entity.Entry, error)
	Insert(ctx context.Context, e *entity.Entry) error
	Update(ctx context.Context, id string, patch entity.EntryPatch) error
}

// LedgerTxRunner ejecuta leer-decidir-escribir de forma atómica para un libro,
// serializando a los escritores del mismo SKU.
type LedgerTxRunner interface {
	Run(ctx context.Context, kind entity.LedgerKind, sku string, fn func(tx LedgerTx) error) error
}
