package dto

import "github.com/jhoicas/control-v/internal/domain/entity"

// AnonymousSessionResponse token de una sesión anónima nueva.
type AnonymousSessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	ExpiresIn int    `json:"expires_in"` // segundos
}

// SessionSettings ajustes de captura por sesión.
type SessionSettings struct {
	LocationRequired bool `json:"location_required"`
}

// UpdateSessionSettingsRequest body de PUT /api/session/settings.
type UpdateSessionSettingsRequest struct {
	LocationRequired *bool `json:"location_required"`
}

// ScanRequest texto decodificado por el lector; Target es sku, location, origin o destination.
type ScanRequest struct {
	Target string `json:"target"`
	Code   string `json:"code"`
}

// ScanResponse valor normalizado listo para el formulario.
type ScanResponse struct {
	Target string              `json:"target"`
	Value  string              `json:"value"`
	Item   *entity.CatalogItem `json:"item,omitempty"`
	Found  bool                `json:"found"`
}

// StatusResponse estado del servicio.
type StatusResponse struct {
	Store        string `json:"store"`
	Fallback     bool   `json:"fallback"`
	CatalogItems int    `json:"catalog_items"`
	Subscribers  int    `json:"subscribers"`
}
