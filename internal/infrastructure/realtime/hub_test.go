package realtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
)

func entries(n int) []entity.Entry {
	out := make([]entity.Entry, n)
	for i := range out {
		out[i] = entity.Entry{ID: string(rune('a' + i)), SKU: "A1"}
	}
	return out
}

func fixed(snap []entity.Entry) realtime.SnapshotFunc {
	return func(context.Context) ([]entity.Entry, error) { return snap, nil }
}

func subscribe(t *testing.T, hub *realtime.Hub, ctx context.Context, kind entity.LedgerKind) <-chan []entity.Entry {
	t.Helper()
	ch, err := hub.Subscribe(ctx, kind, nil)
	require.NoError(t, err)
	return ch
}

func TestHub_PublicaSoloAlLibroSuscrito(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	picking := subscribe(t, hub, ctx, entity.LedgerPicking)
	almacen := subscribe(t, hub, ctx, entity.LedgerWarehouse)

	hub.Publish(entity.LedgerPicking, []entity.Entry{{ID: "1", SKU: "A1"}})

	select {
	case snap := <-picking:
		require.Len(t, snap, 1)
		assert.Equal(t, "A1", snap[0].SKU)
	case <-time.After(time.Second):
		t.Fatal("no llegó el snapshot")
	}
	select {
	case <-almacen:
		t.Fatal("almacén no debe recibir snapshots de picking")
	default:
	}
}

func TestHub_CierraAlCancelar(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := subscribe(t, hub, ctx, entity.LedgerMovement)
	assert.Equal(t, 1, hub.Subscribers(entity.LedgerMovement))

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "el canal debe cerrarse")
	case <-time.After(time.Second):
		t.Fatal("el canal no se cerró")
	}
	assert.Equal(t, 0, hub.Subscribers(entity.LedgerMovement))
}

func TestHub_NoBloqueaSinLector(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = subscribe(t, hub, ctx, entity.LedgerPicking)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Publish(entity.LedgerPicking, nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish bloqueó")
	}
}

// Un cliente que se atrasa debe ver el último estado, no uno viejo.
func TestHub_LectorAtrasadoRecibeElUltimoSnapshot(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := subscribe(t, hub, ctx, entity.LedgerPicking)

	for n := 1; n <= 6; n++ {
		hub.Publish(entity.LedgerPicking, entries(n))
	}

	var last []entity.Entry
	for drained := false; !drained; {
		select {
		case snap := <-ch:
			last = snap
		default:
			drained = true
		}
	}
	assert.Len(t, last, 6, "el último recibido debe ser el último publicado")
}

func TestHub_SnapshotInicialSoloParaElNuevo(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := hub.Subscribe(ctx, entity.LedgerPicking, fixed(entries(1)))
	require.NoError(t, err)
	require.Len(t, <-first, 1)

	second, err := hub.Subscribe(ctx, entity.LedgerPicking, fixed(entries(2)))
	require.NoError(t, err)
	require.Len(t, <-second, 2)

	select {
	case <-first:
		t.Fatal("un suscriptor nuevo no debe generar eventos para los existentes")
	default:
	}
}

func TestHub_SnapshotInicialConError(t *testing.T) {
	hub := realtime.NewHub()
	boom := errors.New("store caído")

	ch, err := hub.Subscribe(context.Background(), entity.LedgerPicking, func(context.Context) ([]entity.Entry, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, ch)
	assert.Equal(t, 0, hub.Subscribers(entity.LedgerPicking), "el suscriptor fallido se da de baja")
}
