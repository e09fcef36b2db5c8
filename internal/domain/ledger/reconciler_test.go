package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/ledger"
)

var t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func stock(id, sku, loc string, qty int64) entity.Entry {
	return entity.Entry{ID: id, Ledger: entity.LedgerPicking, SKU: sku, Location: loc, Quantity: qty, RecordedAt: t0}
}

func movement(id, sku, origin, dest string, qty int64) entity.Entry {
	return entity.Entry{ID: id, Ledger: entity.LedgerMovement, SKU: sku, Origin: origin, Destination: dest, Quantity: qty, RecordedAt: t0}
}

func reconcile(t *testing.T, snapshot []entity.Entry, in entity.Entry, key ledger.IdentityKeyFunc, now time.Time) ledger.Action {
	t.Helper()
	a, err := ledger.Reconcile(snapshot, in, key, now)
	require.NoError(t, err)
	return a
}

// apply simula el store: aplica la acción sobre el snapshot.
func apply(snapshot []entity.Entry, a ledger.Action, nextID string) []entity.Entry {
	switch a.Kind {
	case ledger.ActionInsert:
		rec := a.Record
		rec.ID = nextID
		return append(snapshot, rec)
	case ledger.ActionMerge:
		for i := range snapshot {
			if snapshot[i].ID == a.TargetID {
				snapshot[i].Quantity = a.Quantity
				snapshot[i].RecordedAt = a.RecordedAt
			}
		}
	}
	return snapshot
}

func TestReconcile_InsertaSiNoExiste(t *testing.T) {
	in := stock("", "A1", "R1", 23)
	a := reconcile(t, nil, in, ledger.StockIdentityKey, t0)
	require.Equal(t, ledger.ActionInsert, a.Kind)
	assert.Equal(t, int64(23), a.Record.Quantity)
	assert.Equal(t, t0, a.Record.RecordedAt)
	assert.Empty(t, a.Record.ID, "el id lo asigna el store")
}

func TestReconcile_MismaClaveSumaCantidad(t *testing.T) {
	later := t0.Add(time.Hour)
	snapshot := []entity.Entry{stock("k1", "A1", "R1", 23)}
	a := reconcile(t, snapshot, stock("", "A1", "R1", 10), ledger.StockIdentityKey, later)
	require.Equal(t, ledger.ActionMerge, a.Kind)
	assert.Equal(t, "k1", a.TargetID)
	assert.Equal(t, int64(33), a.Quantity)
	assert.Equal(t, later, a.RecordedAt, "el merge refresca la fecha")
	assert.Empty(t, a.Duplicates)
}

// Dos envíos con igual (sku, ubicación) dejan un solo registro con q1+q2.
func TestReconcile_PropiedadSuma(t *testing.T) {
	pairs := [][2]int64{{0, 0}, {1, 2}, {23, 10}, {100, 0}, {7, 999}}
	for _, p := range pairs {
		var snap []entity.Entry
		snap = apply(snap, reconcile(t, snap, stock("", "X", "L", p[0]), ledger.StockIdentityKey, t0), "id-1")
		snap = apply(snap, reconcile(t, snap, stock("", "X", "L", p[1]), ledger.StockIdentityKey, t0), "id-2")
		require.Len(t, snap, 1)
		assert.Equal(t, "id-1", snap[0].ID)
		assert.Equal(t, p[0]+p[1], snap[0].Quantity)
	}
}

func TestReconcile_ClavesDistintasNoSeMezclan(t *testing.T) {
	inputs := []entity.Entry{
		stock("", "A1", "R1", 1),
		stock("", "A1", "R2", 2),
		stock("", "A2", "R1", 3),
		stock("", "A1", "", 4),
	}
	var snap []entity.Entry
	for i, in := range inputs {
		a := reconcile(t, snap, in, ledger.StockIdentityKey, t0)
		require.Equal(t, ledger.ActionInsert, a.Kind, "entrada %d", i)
		snap = apply(snap, a, string(rune('a'+i)))
	}
	assert.Len(t, snap, 4)
}

func TestReconcile_DuplicadosSeInforman(t *testing.T) {
	snapshot := []entity.Entry{
		stock("k1", "A1", "R1", 5),
		stock("k2", "A1", "R2", 1),
		stock("k3", "A1", "R1", 7),
	}
	a := reconcile(t, snapshot, stock("", "A1", "R1", 1), ledger.StockIdentityKey, t0)
	require.Equal(t, ledger.ActionMerge, a.Kind)
	assert.Equal(t, "k1", a.TargetID, "se usa el primero en orden de iteración")
	assert.Equal(t, int64(6), a.Quantity)
	assert.Equal(t, []string{"k3"}, a.Duplicates)
}

func TestReconcile_MovimientosPorRuta(t *testing.T) {
	key := ledger.IdentityKeyFor(entity.LedgerMovement)
	var snap []entity.Entry
	snap = apply(snap, reconcile(t, snap, movement("", "B2", "Picking", "Almacén", 5), key, t0), "m1")
	snap = apply(snap, reconcile(t, snap, movement("", "B2", "Almacén", "Picking", 3), key, t0), "m2")
	require.Len(t, snap, 2, "rutas inversas son claves distintas")

	a := reconcile(t, snap, movement("", "B2", "picking", "ALMACÉN", 2), key, t0)
	require.Equal(t, ledger.ActionMerge, a.Kind)
	assert.Equal(t, "m1", a.TargetID)
	assert.Equal(t, int64(7), a.Quantity)
}

func TestReconcile_SumaQueSuperaElMaximo(t *testing.T) {
	snapshot := []entity.Entry{stock("k1", "A1", "R1", 9223372036854775000)}
	_, err := ledger.Reconcile(snapshot, stock("", "A1", "R1", 1000), ledger.StockIdentityKey, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	snapshot = []entity.Entry{stock("k1", "A1", "R1", ledger.MaxQuantity-5)}
	_, err = ledger.Reconcile(snapshot, stock("", "A1", "R1", 6), ledger.StockIdentityKey, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	a, err := ledger.Reconcile(snapshot, stock("", "A1", "R1", 5), ledger.StockIdentityKey, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(ledger.MaxQuantity), a.Quantity, "el máximo exacto se acepta")
}

func TestCheckLocationConflict(t *testing.T) {
	snapshot := []entity.Entry{
		stock("k1", "A1", "", 1),
		stock("k2", "A1", "R1", 1),
	}

	adv, ok := ledger.CheckLocationConflict(snapshot, stock("", "A1", "R2", 1))
	require.True(t, ok)
	assert.Equal(t, ledger.AdvisoryConflictingLocation, adv.Code)
	assert.Equal(t, "R1", adv.ExistingLocation)

	_, ok = ledger.CheckLocationConflict(snapshot, stock("", "A1", "R1", 1))
	assert.False(t, ok, "misma ubicación no es conflicto")

	_, ok = ledger.CheckLocationConflict(snapshot, stock("", "B9", "R7", 1))
	assert.False(t, ok, "otro SKU no es conflicto")

	_, ok = ledger.CheckLocationConflict([]entity.Entry{stock("k1", "A1", "", 1)}, stock("", "A1", "R2", 1))
	assert.False(t, ok, "una ubicación existente vacía no dispara la advertencia")

	_, ok = ledger.CheckLocationConflict(nil, movement("", "A1", "Picking", "Almacén", 1))
	assert.False(t, ok)
}
