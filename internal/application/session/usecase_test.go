package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/control-v/internal/application/dto"
	"github.com/jhoicas/control-v/pkg/jwt"
)

func TestStartAnonymous(t *testing.T) {
	uc := NewUseCase(JWTConfig{Secret: "s", ExpMinutes: 10, Issuer: "control-v"}, dto.SessionSettings{LocationRequired: true})
	resp, err := uc.StartAnonymous()
	require.NoError(t, err)
	assert.Equal(t, 600, resp.ExpiresIn)

	id, err := jwt.Parse("s", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, id)
}

func TestStartAnonymous_SinSecret(t *testing.T) {
	uc := NewUseCase(JWTConfig{}, dto.SessionSettings{})
	_, err := uc.StartAnonymous()
	assert.Error(t, err)
}

func TestSettings_PorSesion(t *testing.T) {
	uc := NewUseCase(JWTConfig{Secret: "s"}, dto.SessionSettings{LocationRequired: true})
	assert.True(t, uc.Settings("a").LocationRequired)

	off := false
	got := uc.UpdateSettings("a", dto.UpdateSessionSettingsRequest{LocationRequired: &off})
	assert.False(t, got.LocationRequired)
	assert.False(t, uc.Settings("a").LocationRequired)
	assert.True(t, uc.Settings("b").LocationRequired, "otra sesión conserva el valor por defecto")

	got = uc.UpdateSettings("a", dto.UpdateSessionSettingsRequest{})
	assert.False(t, got.LocationRequired)
	assert.Equal(t, 1, uc.Count())
}
