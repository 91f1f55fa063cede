package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the filesystem layout and document settings of a catalog.
// Relative paths are resolved against Root.
type Config struct {
	Root         string `yaml:"root"`
	Database     string `yaml:"database"`
	ImagesDir    string `yaml:"images_dir"`
	ImagesWeb    string `yaml:"images_web_prefix"`
	LogoDir      string `yaml:"logo_dir"`
	PosterDir    string `yaml:"poster_dir"`
	TemplateDir  string `yaml:"template_dir"`
	UploadsDir   string `yaml:"uploads_dir"`
	OutputDir    string `yaml:"output_dir"`
	CatalogTitle string `yaml:"catalog_title"`
	// OverlayColor and FallbackColor are #RRGGBB or #RGB hex colors of the
	// template layout text and of pages missing a background image
	OverlayColor  string `yaml:"overlay_color"`
	FallbackColor string `yaml:"fallback_color"`
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DefaultConfig returns the layout used by the catalog application when no
// configuration file is present
func DefaultConfig() *Config {
	return &Config{
		Root:          ".",
		Database:      "database.db",
		ImagesDir:     filepath.Join("static", "images"),
		ImagesWeb:     "/static/images/",
		LogoDir:       filepath.Join("static", "logo"),
		PosterDir:     filepath.Join("static", "posters"),
		TemplateDir:   filepath.Join("static", "tile_templates"),
		UploadsDir:    "uploads",
		OutputDir:     ".",
		CatalogTitle:  "Tile Catalog / Quotation",
		OverlayColor:  "#ffffff",
		FallbackColor: "#424754",
	}
}

// Load reads configuration from the specified file path on top of the defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file keeps the defaults
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the mandatory settings are present
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root is required")
	}
	if c.Database == "" {
		return fmt.Errorf("config: database is required")
	}
	if c.ImagesDir == "" {
		return fmt.Errorf("config: images_dir is required")
	}
	for _, color := range [][2]string{{"overlay_color", c.OverlayColor}, {"fallback_color", c.FallbackColor}} {
		if color[1] != "" && !hexColor.MatchString(color[1]) {
			return fmt.Errorf("config: %s %q is not a hex color", color[0], color[1])
		}
	}
	return nil
}

// Path resolves p against the root unless it is already absolute
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// RootDir returns the absolute application root
func (c *Config) RootDir() string {
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return c.Root
	}
	return abs
}

// EnsureDirs creates every directory the catalog writes to or scans
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ImagesDir, c.LogoDir, c.PosterDir, c.TemplateDir, c.UploadsDir, c.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(c.Path(dir), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
