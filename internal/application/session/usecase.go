package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase emite sesiones anónimas y guarda sus ajustes de captura en memoria.
// Los ajustes no sobreviven a un reinicio; una sesión sin ajustes usa los valores por defecto.
type UseCase struct {
	jwtCfg   JWTConfig
	defaults dto.SessionSettings

	mu       sync.RWMutex
	settings map[string]dto.SessionSettings
}

// NewUseCase construye el caso de uso de sesiones.
func NewUseCase(jwtCfg JWTConfig, defaults dto.SessionSettings) *UseCase {
	return &UseCase{jwtCfg: jwtCfg, defaults: defaults, settings: make(map[string]dto.SessionSettings)}
}

// StartAnonymous crea una sesión nueva y devuelve su token.
func (uc *UseCase) StartAnonymous() (*dto.AnonymousSessionResponse, error) {
	id := uuid.New().String()
	token, err := jwt.Generate(uc.jwtCfg.Secret, id, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AnonymousSessionResponse{
		Token:     token,
		SessionID: id,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
	}, nil
}

// Settings ajustes de la sesión (o los por defecto).
func (uc *UseCase) Settings(sessionID string) dto.SessionSettings {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if s, ok := uc.settings[sessionID]; ok {
		return s
	}
	return uc.defaults
}

// UpdateSettings aplica los campos informados y devuelve el resultado.
func (uc *UseCase) UpdateSettings(sessionID string, in dto.UpdateSessionSettingsRequest) dto.SessionSettings {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, ok := uc.settings[sessionID]
	if !ok {
		s = uc.defaults
	}
	if in.LocationRequired != nil {
		s.LocationRequired = *in.LocationRequired
	}
	uc.settings[sessionID] = s
	return s
}

// Count sesiones con ajustes propios.
func (uc *UseCase) Count() int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.settings)
}
