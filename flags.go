package tilecat

import (
	"github.com/flanksource/commons/logger"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/flanksource/tilecat/config"
)

type AllFlags struct {
	CatalogOptions `yaml:",inline"`
	logger.Flags   `yaml:"log"`
}

// CatalogOptions override the configuration file from the command line
type CatalogOptions struct {
	ConfigFile string `yaml:"config"`
	Root       string `yaml:"root,omitempty"`
	Database   string `yaml:"database,omitempty"`
	OutputDir  string `yaml:"output_dir,omitempty"`
}

var Flags AllFlags = AllFlags{
	CatalogOptions: CatalogOptions{
		ConfigFile: "tilecat.yaml",
	},
	Flags: logger.Flags{
		Level:        "info",
		LevelCount:   0,
		JsonLogs:     false,
		ReportCaller: false,
		LogToStderr:  true,
	},
}

// BindAllFlags adds the logging and catalog flags to a pflag set (for Cobra)
func BindAllFlags(flags *pflag.FlagSet) AllFlags {
	flags.CountVarP(&Flags.Flags.LevelCount, "loglevel", "v", "Increase logging level")
	flags.StringVar(&Flags.Flags.Level, "log-level", "info", "Set the default log level")
	flags.BoolVar(&Flags.Flags.JsonLogs, "json-logs", false, "Print logs in json format to stderr")

	flags.BoolVar(&Flags.Flags.ReportCaller, "report-caller", false, "Report log caller info")
	flags.BoolVar(&Flags.Flags.LogToStderr, "log-to-stderr", true, "Log to stderr instead of stdout")

	flags.StringVarP(&Flags.ConfigFile, "config", "c", Flags.ConfigFile, "Catalog configuration file (YAML)")
	flags.StringVar(&Flags.Root, "root", "", "Catalog root directory, overrides the configuration file")
	flags.StringVar(&Flags.Database, "db", "", "SQLite database path, overrides the configuration file")
	flags.StringVarP(&Flags.OutputDir, "output", "o", "", "Directory rendered documents are written to")

	return Flags
}

func (a AllFlags) String() string {
	s, _ := yaml.Marshal(a)
	return string(s)
}

func (a AllFlags) UseFlags() {
	logger.Configure(a.Flags)
	logger.Debugf("Using flags: %s", a)
}

// LoadConfig reads the configuration file and applies the command line overrides
func (a AllFlags) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.ConfigFile)
	if err != nil {
		return nil, err
	}
	if a.Root != "" {
		cfg.Root = a.Root
	}
	if a.Database != "" {
		cfg.Database = a.Database
	}
	if a.OutputDir != "" {
		cfg.OutputDir = a.OutputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
