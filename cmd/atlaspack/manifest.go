package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// manifestFile is the name of the manifest written next to the pages.
const manifestFile = "atlas.toml"

// manifest describes the exported pages and where each sprite landed.
type manifest struct {
	PageSize int            `toml:"page_size"`
	Pages    []manifestPage `toml:"page"`
	Sprites  []sprite       `toml:"sprite"`
}

type manifestPage struct {
	Index int    `toml:"index"`
	File  string `toml:"file"`
}

type sprite struct {
	Name   string  `toml:"name"`
	Page   int     `toml:"page"`
	X      int     `toml:"x"`
	Y      int     `toml:"y"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	U0     float32 `toml:"u0"`
	V0     float32 `toml:"v0"`
	U1     float32 `toml:"u1"`
	V1     float32 `toml:"v1"`
}

func pageFile(i int) string {
	return fmt.Sprintf("page-%d.png", i)
}

// sortSprites orders sprites by name so manifests diff cleanly.
func (m *manifest) sortSprites() {
	sort.Slice(m.Sprites, func(i, j int) bool { return m.Sprites[i].Name < m.Sprites[j].Name })
}

func writeManifest(path string, m *manifest) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func readManifest(path string) (*manifest, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
