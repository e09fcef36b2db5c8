package dto

import "github.com/jhoicas/control-v/internal/domain/entity"

// CatalogLookupResponse resultado de GET /api/catalog?sku=.
type CatalogLookupResponse struct {
	Item  entity.CatalogItem `json:"item"`
	Found bool               `json:"found"`
}

// CatalogSuggestResponse resultado de GET /api/catalog?prefix=.
type CatalogSuggestResponse struct {
	Items []entity.CatalogItem `json:"items"`
	Total int                  `json:"total"`
}

// CatalogReloadRequest body de POST /api/catalog/reload. Source vacío o igual a CATALOG_URL.
type CatalogReloadRequest struct {
	Source string `json:"source"`
}

// CatalogReloadResponse resultado de una recarga exitosa.
type CatalogReloadResponse struct {
	Source string `json:"source"`
	Items  int    `json:"items"`
}
