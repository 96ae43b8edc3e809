package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/weebcore/atlas"
)

// config is the atlaspack configuration file.
//
//	page_size = 1024
//	max_pages = 0
//	output    = "out"
//	inputs    = ["sprites", "ui/icons"]
//	scale     = 1.0
type config struct {
	PageSize int      `toml:"page_size"`
	MaxPages int      `toml:"max_pages"`
	Output   string   `toml:"output"`
	Inputs   []string `toml:"inputs"`
	Scale    float64  `toml:"scale"`
}

func defaultConfig() config {
	return config{
		PageSize: atlas.DefaultPageSize,
		Output:   "out",
		Scale:    1,
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// validate checks the fields the atlas does not check itself.
func (c config) validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("no inputs given")
	}
	if c.Output == "" {
		return fmt.Errorf("no output directory given")
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	ac := c.atlasConfig()
	return ac.Validate()
}

func (c config) atlasConfig() atlas.Config {
	return atlas.Config{
		PageSize: c.PageSize,
		MaxPages: c.MaxPages,
		Label:    "atlaspack",
	}
}
