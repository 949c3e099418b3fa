package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"lumen/internal/source"
)

// Config mirrors lumen.toml. Every field has a flag counterpart; flags win
// when set explicitly.
type Config struct {
	Render RenderConfig `toml:"render"`
}

// RenderConfig holds default rendering options.
type RenderConfig struct {
	Color   string `toml:"color"`   // auto|on|off
	Context int    `toml:"context"` // extra context lines
	Paths   string `toml:"paths"`   // auto|absolute|relative|basename
}

func defaultConfig() Config {
	return Config{Render: RenderConfig{Color: "auto", Paths: "auto"}}
}

// loadConfig reads lumen.toml from the working directory. A missing file is
// not an error; a present but broken one is.
func loadConfig() (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile("lumen.toml")
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("lumen.toml: %w", err)
	}
	return cfg, nil
}

func parsePathMode(mode string) (source.PathMode, error) {
	switch mode {
	case "auto", "":
		return source.PathAuto, nil
	case "absolute":
		return source.PathAbsolute, nil
	case "relative":
		return source.PathRelative, nil
	case "basename":
		return source.PathBasename, nil
	}
	return source.PathAuto, fmt.Errorf("unknown path mode %q", mode)
}
