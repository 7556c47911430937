//Package config loads the optional YAML run configuration
//a file only holds the keys it changes, the rest keeps the value passed to Load:
//
//	width: 80
//	height: 40
//	rule: highlife
//	engine: actors
//	interval: 50ms
//	templates:
//	  - name: diehard
//	    cells: [[1, 7], [2, 1], [2, 2], [3, 2], [3, 6], [3, 7], [3, 8]]
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"lifegrid/src/game"
	"lifegrid/src/logging"
	"lifegrid/src/universe"
)

//File is the on-disk layout
type File struct {
	Width     int            `yaml:"width"`
	Height    int            `yaml:"height"`
	Rule      string         `yaml:"rule"`
	Engine    string         `yaml:"engine"`
	Workers   int            `yaml:"workers"`
	Order     string         `yaml:"order"`
	Interval  time.Duration  `yaml:"interval"`
	MaxSteps  *int           `yaml:"maxSteps"`
	Log       LogSection     `yaml:"log"`
	Metrics   MetricsSection `yaml:"metrics"`
	Templates []TemplateSpec `yaml:"templates"`
}

type LogSection struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type MetricsSection struct {
	Addr string `yaml:"addr"`
}

//TemplateSpec is a named pattern, cells are [row, col] pairs
type TemplateSpec struct {
	Name  string   `yaml:"name"`
	Descr string   `yaml:"descr"`
	Cells [][2]int `yaml:"cells"`
}

//Config is the merged result used by the command
type Config struct {
	Game        game.Options
	Log         logging.Config
	MetricsAddr string
	Templates   []game.Template
}

//Default returns the configuration used without a file
func Default() Config {
	return Config{Game: game.DefaultOptions, Log: logging.Config{Level: logging.LevelInfo}}
}

//Load reads the YAML file at path over base, an empty path returns base unchanged
func Load(path string, base Config) (Config, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, base)
}

//Parse decodes YAML data over base and validates the result
func Parse(data []byte, base Config) (Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	cfg := base
	if f.Width != 0 {
		cfg.Game.Width = f.Width
	}
	if f.Height != 0 {
		cfg.Game.Height = f.Height
	}
	if f.Rule != "" {
		cfg.Game.Rule = f.Rule
	}
	if f.Engine != "" {
		cfg.Game.Engine = f.Engine
	}
	if f.Workers != 0 {
		cfg.Game.Workers = f.Workers
	}
	if f.Order != "" {
		cfg.Game.Order = universe.Order(f.Order)
	}
	if f.Interval != 0 {
		cfg.Game.Interval = f.Interval
	}
	if f.MaxSteps != nil {
		cfg.Game.MaxSteps = *f.MaxSteps
	}
	if f.Log.Level != "" {
		lvl, err := logging.ParseLevel(f.Log.Level)
		if err != nil {
			return base, fmt.Errorf("decode config: %w", err)
		}
		cfg.Log.Level = lvl
	}
	if f.Log.JSON {
		cfg.Log.JSON = true
	}
	if f.Metrics.Addr != "" {
		cfg.MetricsAddr = f.Metrics.Addr
	}
	for _, ts := range f.Templates {
		if ts.Name == "" {
			return base, errors.New("decode config: template without a name")
		}
		t := game.Template{Name: ts.Name, Descr: ts.Descr}
		for _, rc := range ts.Cells {
			t.Coordinates = append(t.Coordinates, universe.Position{Row: rc[0], Col: rc[1]})
		}
		cfg.Templates = append(cfg.Templates, t)
	}
	if err := Validate(cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

//Validate rejects options the grid would refuse, before anything is built
func Validate(cfg Config) error {
	o := cfg.Game
	if o.Width <= 0 || o.Height <= 0 {
		return &universe.InvalidDimensionsError{Width: o.Width, Height: o.Height}
	}
	if _, err := universe.LookupRule(o.Rule); err != nil {
		return err
	}
	if o.Engine != "" && !slices.Contains(universe.Engines(), o.Engine) {
		return fmt.Errorf("%w %q", universe.ErrUnknownEngine, o.Engine)
	}
	if _, err := universe.NewAddressing(o.Order, o.Width, o.Height); err != nil {
		return err
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("max steps must not be negative, got %d", o.MaxSteps)
	}
	return nil
}
