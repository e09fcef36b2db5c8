// Package catalog obtiene y decodifica el catálogo de productos (xlsx o texto delimitado)
// desde una URL o un archivo local.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/control-v/internal/domain"
	"github.com/jhoicas/control-v/internal/domain/entity"
)

// maxCatalogBytes tamaño máximo aceptado del catálogo (archivo o respuesta HTTP).
const maxCatalogBytes = 32 << 20

// Loader obtiene el catálogo desde una URL http(s) o una ruta local.
type Loader struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewLoader construye el loader con el timeout de red indicado.
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{httpClient: &http.Client{Timeout: timeout}, maxBytes: maxCatalogBytes}
}

// Load descarga (o lee) la fuente y la decodifica. Cualquier falla envuelve domain.ErrCatalogLoad.
func (l *Loader) Load(ctx context.Context, source string) (entity.Catalog, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: fuente vacía", domain.ErrCatalogLoad)
	}
	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: leer archivo: %v", domain.ErrCatalogLoad, err)
		}
		defer f.Close()
		return l.readAll(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: crear request: %v", domain.ErrCatalogLoad, err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrCatalogLoad, ctx.Err())
		}
		return nil, fmt.Errorf("%w: llamada HTTP fallida: %v", domain.ErrCatalogLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: código de estado %d", domain.ErrCatalogLoad, resp.StatusCode)
	}
	return l.readAll(resp.Body)
}

// readAll lee hasta maxBytes; un catálogo más grande es un error, nunca se trunca.
func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: leer catálogo: %v", domain.ErrCatalogLoad, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: catálogo excede %d bytes", domain.ErrCatalogLoad, l.maxBytes)
	}
	return data, nil
}
