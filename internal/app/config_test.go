package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CSRF_SECRET", "csrfsecret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://localhost:3000", cfg.CatalogAPIURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigHonoursCatalogURL(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CSRF_SECRET", "csrfsecret")
	t.Setenv("CATALOG_API_URL", "https://catalog.internal:8443")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.internal:8443", cfg.CatalogAPIURL)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
