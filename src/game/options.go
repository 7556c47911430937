package game

import (
	"log/slog"
	"time"

	"lifegrid/src/universe"
)

//Options represents the game configurable options
type Options struct {
	Width    int
	Height   int
	Rule     string
	Engine   string
	Workers  int
	Order    universe.Order
	Interval time.Duration
	MaxSteps int
	Logger   *slog.Logger
	Recorder universe.Recorder
}

//Status represents the status of the game at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	Changes       int
	Births        int //cells born since the last clear
	Deaths        int //cells died since the last clear
	IterationTime time.Duration
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the game
type Viewer interface {
	Refresh()
	Register(g *Game)
	Start()
}

//The game running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
)

const (
	RunningStateManual RunningState = iota
	RunningStateStep
	RunningStateRun
	RunningStateFinished
)

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "waiting"
	case RunningStateStep:
		return "do the step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

var DefaultOptions = Options{
	Width:    DefWidth,
	Height:   DefHeight,
	Engine:   universe.DefEngine,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}

func (o Options) gridOptions() universe.Options {
	return universe.Options{
		Width:    o.Width,
		Height:   o.Height,
		Rule:     o.Rule,
		Engine:   o.Engine,
		Workers:  o.Workers,
		Order:    o.Order,
		Logger:   o.Logger,
		Recorder: o.Recorder,
	}
}
