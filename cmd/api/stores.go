package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/control-v/internal/domain/repository"
	"github.com/jhoicas/control-v/internal/infrastructure/localstore"
	"github.com/jhoicas/control-v/internal/infrastructure/postgres"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
	"github.com/jhoicas/control-v/internal/infrastructure/redisstore"
	"github.com/jhoicas/control-v/pkg/config"
)

// stores implementaciones activas de los puertos de persistencia.
type stores struct {
	ledger   repository.LedgerStore
	txRunner repository.LedgerTxRunner
	catalog  repository.CatalogStore
	fallback bool
	close    func()
}

// openStores abre el almacén configurado. Si el remoto no responde al arrancar se usa el
// archivo local durante toda la ejecución; no se vuelve a intentar el remoto.
// listenCtx controla la goroutine que recibe cambios de otras instancias.
func openStores(ctx, listenCtx context.Context, cfg *config.Config, hub *realtime.Hub, log zerolog.Logger) (*stores, error) {
	var err error
	switch cfg.Ledger.Store {
	case "postgres":
		var s *stores
		if s, err = openPostgres(ctx, listenCtx, cfg.DB, hub); err == nil {
			return s, nil
		}
	case "redis":
		var s *stores
		if s, err = openRedis(ctx, listenCtx, cfg.Redis, hub); err == nil {
			return s, nil
		}
	}

	local, lerr := localstore.Open(cfg.Ledger.LocalStorePath, hub)
	if lerr != nil {
		return nil, fmt.Errorf("almacén local %s: %w", cfg.Ledger.LocalStorePath, lerr)
	}
	s := &stores{ledger: local, txRunner: local, catalog: local, close: func() {}}
	if err != nil {
		s.fallback = true
		log.Warn().Err(err).
			Str("store", cfg.Ledger.Store).
			Str("path", cfg.Ledger.LocalStorePath).
			Msg("almacén remoto no disponible; usando respaldo local")
	}
	return s, nil
}

func openPostgres(ctx, listenCtx context.Context, cfg config.DBConfig, hub *realtime.Hub) (*stores, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	ledger := postgres.NewLedgerStore(pool, hub)
	go ledger.Listen(listenCtx)
	return &stores{
		ledger:   ledger,
		txRunner: postgres.NewTxRunner(pool),
		catalog:  postgres.NewCatalogRepository(pool),
		close:    pool.Close,
	}, nil
}

func openRedis(ctx, listenCtx context.Context, cfg config.RedisConfig, hub *realtime.Hub) (*stores, error) {
	rdb, err := redisstore.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := redisstore.New(rdb, hub)
	go store.Listen(listenCtx)
	return &stores{
		ledger:   store,
		txRunner: store,
		catalog:  store,
		close:    func() { _ = rdb.Close() },
	}, nil
}
