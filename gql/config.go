package gql

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config names every path and limit the worker uses.
type Config struct {
	RootDir       string `yaml:"root_dir"`        // working dir holding the pipe, src/ and result/
	PipeName      string `yaml:"pipe_name"`       // handshake endpoint, relative to RootDir
	SrcDir        string `yaml:"src_dir"`         // numbered pattern batch files, relative to RootDir
	ResultDir     string `yaml:"result_dir"`      // representative files, relative to RootDir
	SeedGraphFile string `yaml:"seed_graph_file"` // seed graph for each cycle, relative to RootDir
	CreatePipe    bool   `yaml:"create_pipe"`     // mkfifo the endpoint at startup if absent

	MaxMissingEdges int   `yaml:"max_missing_edges"` // 0 denotes DefaultMaxMissingEdges
	MaxSubsets      int64 `yaml:"max_subsets"`       // 0 denotes DefaultMaxSubsets

	CatalogPath string `yaml:"catalog_path"` // omit for an in-memory catalog
	MetricsFile string `yaml:"metrics_file"` // if set, metrics are dumped here after each cycle
}

// DefaultConfig returns the layout the controller expects.
func DefaultConfig() Config {
	return Config{
		RootDir:         "/tmp/gql/",
		PipeName:        "my_pipe",
		SrcDir:          "src/",
		ResultDir:       "result",
		SeedGraphFile:   "src_graph.txt",
		CreatePipe:      true,
		MaxMissingEdges: DefaultMaxMissingEdges,
		MaxSubsets:      DefaultMaxSubsets,
	}
}

// LoadConfig overlays the YAML file at pathname onto DefaultConfig().
// An empty pathname returns the defaults.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()
	if pathname == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(pathname)
	if err != nil {
		return cfg, errors.Wrapf(ErrFile, "config %q: %v", pathname, err)
	}
	if err = yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(ErrParse, "config %q: %v", pathname, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills unset limits with their defaults.
func (cfg *Config) Normalize() {
	if cfg.MaxMissingEdges <= 0 {
		cfg.MaxMissingEdges = DefaultMaxMissingEdges
	}
	if cfg.MaxSubsets <= 0 {
		cfg.MaxSubsets = DefaultMaxSubsets
	}
}

func (cfg *Config) PipePath() string {
	return filepath.Join(cfg.RootDir, cfg.PipeName)
}

func (cfg *Config) SrcPath() string {
	return filepath.Join(cfg.RootDir, cfg.SrcDir)
}

func (cfg *Config) ResultPath() string {
	return filepath.Join(cfg.RootDir, cfg.ResultDir)
}

func (cfg *Config) SeedGraphPath() string {
	return filepath.Join(cfg.RootDir, cfg.SeedGraphFile)
}
