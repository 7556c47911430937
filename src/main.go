package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/integrii/flaggy"
	"github.com/prometheus/client_golang/prometheus"

	"lifegrid/src/config"
	"lifegrid/src/game"
	"lifegrid/src/logging"
	"lifegrid/src/metrics"
	"lifegrid/src/universe"
	"lifegrid/src/view"
)

type EnvOptions struct {
	configPath  string
	interactive bool
	randomData  bool
	seed        int64
	template    string
	noColor     bool

	//overrides, zero values keep the configuration file value
	width       int
	height      int
	interval    time.Duration
	maxSteps    int
	rule        string
	engine      string
	workers     int
	order       string
	logLevel    string
	logJSON     bool
	metricsAddr string
}

func main() {
	eo, cfg := initOptions()

	logger := logging.New(cfg.Log)
	cfg.Game.Logger = logger

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Game.Recorder = collector
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler(reg)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	var stateCh chan game.Status
	if !eo.interactive {
		stateCh = make(chan game.Status, 10) //the buffered channel to getting the game status
	}

	g, err := game.New(&cfg.Game, stateCh)
	if err != nil {
		log.Fatal(err)
	}
	for _, t := range cfg.Templates {
		g.AddTemplate(t)
	}

	if eo.interactive {
		v := view.NewViewTerminal(eo.seed)
		g.RegisterViewer(v)
		seed(g, eo)
		v.Start()
		g.Close()
		return
	}

	v := view.NewConsoleOut(nil, !eo.noColor)
	g.RegisterViewer(v)
	seed(g, eo)
	v.Start()
	g.Run()
	for st := range stateCh {
		if st.RunningMode == game.RunningStateFinished {
			break
		}
	}
	g.Close()
}

func seed(g *game.Game, eo *EnvOptions) {
	if eo.randomData {
		g.SettleWithRandomData(eo.seed)
		return
	}
	if !g.SettleTemplate(eo.template) {
		log.Fatalf("unknown template %q", eo.template)
	}
}

func initOptions() (*EnvOptions, config.Config) {
	eo := &EnvOptions{template: "testSample1", seed: time.Now().UnixNano(), maxSteps: -1}

	flaggy.SetName("lifegrid")
	flaggy.SetDescription("\"The Life\" game simulation")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true

	flaggy.String(&eo.configPath, "c", "config", "YAML configuration file, flags override its values")
	flaggy.Int(&eo.width, "x", "width", "Width of a simulation field")
	flaggy.Int(&eo.height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&eo.interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&eo.maxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 means no limit")
	flaggy.String(&eo.rule, "u", "rule", "Rule in B<digits>/S<digits> notation or one of ["+strings.Join(ruleNames(), "|")+"]")
	flaggy.String(&eo.engine, "e", "engine", "Engine to use ["+strings.Join(universe.Engines(), "|")+"]")
	flaggy.Int(&eo.workers, "w", "workers", "Workers of the parallel engine, 0 means the number of CPUs")
	flaggy.String(&eo.order, "o", "order", "Cell storage order [row-major|col-major]")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.Int64(&eo.seed, "", "seed", "Seed for the random data")
	flaggy.String(&eo.template, "t", "template", "Seeding template name")
	flaggy.String(&eo.logLevel, "l", "logLevel", "Log level [debug|info|warn|error]")
	flaggy.Bool(&eo.logJSON, "", "logJSON", "Write logs as JSON")
	flaggy.String(&eo.metricsAddr, "m", "metrics", "Serve Prometheus metrics on this address, for example :9100")
	flaggy.Bool(&eo.noColor, "", "noColor", "Disable colored output")

	flaggy.Parse()

	cfg, err := config.Load(eo.configPath, config.Default())
	if err != nil {
		log.Fatal(err)
	}
	if err := eo.apply(&cfg); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	if err := config.Validate(cfg); err != nil {
		flaggy.ShowHelpAndExit(fmt.Sprintf("invalid configuration: %v", err))
	}
	return eo, cfg
}

//apply overrides the configuration with the flags given on the command line
func (eo *EnvOptions) apply(cfg *config.Config) error {
	uo := &cfg.Game
	if eo.width != 0 {
		uo.Width = eo.width
	}
	if eo.height != 0 {
		uo.Height = eo.height
	}
	if eo.interval != 0 {
		uo.Interval = eo.interval
	}
	if eo.maxSteps >= 0 {
		uo.MaxSteps = eo.maxSteps
	}
	if eo.rule != "" {
		uo.Rule = eo.rule
	}
	if eo.engine != "" {
		uo.Engine = eo.engine
	}
	if eo.workers != 0 {
		uo.Workers = eo.workers
	}
	if eo.order != "" {
		uo.Order = universe.Order(eo.order)
	}
	if eo.logLevel != "" {
		lvl, err := logging.ParseLevel(eo.logLevel)
		if err != nil {
			return err
		}
		cfg.Log.Level = lvl
	}
	if eo.logJSON {
		cfg.Log.JSON = true
	}
	if eo.metricsAddr != "" {
		cfg.MetricsAddr = eo.metricsAddr
	}
	return nil
}

func ruleNames() []string {
	names := make([]string, 0, len(universe.WellKnownRules))
	for k := range universe.WellKnownRules {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
