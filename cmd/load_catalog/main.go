// load_catalog carga el catálogo de productos (xlsx o csv) en el almacén configurado,
// para precargarlo antes de arrancar la API o en instalaciones sin salida a internet.
//
// Uso: go run ./cmd/load_catalog [ruta/catalogo.xlsx | https://...]
// Sin argumento usa CATALOG_URL.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/control-v/internal/domain/entity"
	"github.com/jhoicas/control-v/internal/domain/repository"
	infracatalog "github.com/jhoicas/control-v/internal/infrastructure/catalog"
	"github.com/jhoicas/control-v/internal/infrastructure/localstore"
	"github.com/jhoicas/control-v/internal/infrastructure/postgres"
	"github.com/jhoicas/control-v/internal/infrastructure/realtime"
	"github.com/jhoicas/control-v/internal/infrastructure/redisstore"
	"github.com/jhoicas/control-v/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	source := cfg.Catalog.URL
	if len(os.Args) > 1 {
		source = os.Args[1]
	}
	if source == "" {
		fmt.Fprintln(os.Stderr, "Indique la ruta o URL del catálogo (o defina CATALOG_URL)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	loader := infracatalog.NewLoader(time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second)
	catalog, err := loader.Load(ctx, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	store, closeStore, err := openCatalogStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacén %s: %v\n", cfg.Ledger.Store, err)
		os.Exit(1)
	}
	defer closeStore()

	if err := store.Replace(ctx, catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Guardar catálogo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Catálogo cargado en %s: %d productos (%s)\n", cfg.Ledger.Store, len(catalog), source)
	printSample(catalog)
}

// openCatalogStore a diferencia de la API, aquí no hay respaldo local: si el remoto falla se aborta.
func openCatalogStore(ctx context.Context, cfg *config.Config) (repository.CatalogStore, func(), error) {
	switch cfg.Ledger.Store {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewCatalogRepository(pool), pool.Close, nil
	case "redis":
		rdb, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(rdb, realtime.NewHub()), func() { _ = rdb.Close() }, nil
	default:
		store, err := localstore.Open(cfg.Ledger.LocalStorePath, realtime.NewHub())
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func printSample(catalog entity.Catalog) {
	for i, item := range catalog.Suggest("", 5) {
		fmt.Printf("  %d. %s  %s\n", i+1, item.SKU, item.Description)
	}
}
