package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilecat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: /srv/tiles\nposter_dir: covers\ncatalog_title: Quotation\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/tiles", cfg.Root)
	assert.Equal(t, "covers", cfg.PosterDir)
	assert.Equal(t, "Quotation", cfg.CatalogTitle)
	assert.Equal(t, filepath.Join("static", "tile_templates"), cfg.TemplateDir)
	assert.Equal(t, "/srv/tiles/covers", cfg.Path(cfg.PosterDir))
	assert.Equal(t, "/abs/db.sqlite", cfg.Path("/abs/db.sqlite"))
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Root = root

	path := filepath.Join(root, "conf", "tilecat.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	require.NoError(t, cfg.EnsureDirs())
	for _, dir := range []string{cfg.ImagesDir, cfg.LogoDir, cfg.PosterDir, cfg.TemplateDir, cfg.UploadsDir} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestValidateColors(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.OverlayColor = "fc0"
	cfg.FallbackColor = ""
	assert.NoError(t, cfg.Validate())

	cfg.FallbackColor = "slate"
	assert.ErrorContains(t, cfg.Validate(), "fallback_color")

	path := filepath.Join(t.TempDir(), "tilecat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("overlay_color: '#12345'\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "overlay_color")
}
