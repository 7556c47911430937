package game

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"lifegrid/src/logging"
	"lifegrid/src/universe"
)

//Game drives a grid: single steps on demand or continuous transitions on a cadence
//all commands are serialized through the control loop
type Game struct {
	grid    *universe.Grid
	options struct {
		Options
		sync.Mutex
	}
	state struct {
		Status
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	templates struct {
		m map[string]Template
		sync.Mutex
	}
	limiter   *rate.Limiter
	runCancel context.CancelFunc
	sub       universe.Subscription
	controlCh chan func()
	closeCh   chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

//ToggleRequest asks to force the cell at Row, Col to Alive
type ToggleRequest struct {
	Row   int
	Col   int
	Alive bool
}

//New creates the game and its grid, starts the control loop
//stateCh is optional, when given every running state switch is written to it
func New(o *Options, stateCh chan Status) (*Game, error) {
	if o == nil {
		def := DefaultOptions
		o = &def
	}
	logger := o.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	grid, err := universe.New(o.gridOptions())
	if err != nil {
		return nil, err
	}

	g := Game{
		grid:      grid,
		stateCh:   stateCh,
		limiter:   rate.NewLimiter(intervalLimit(o.Interval), 1),
		controlCh: make(chan func(), 1),
		closeCh:   make(chan struct{}),
		loopDone:  make(chan struct{}),
		log:       logger.With("component", "game"),
	}
	g.options.Options = *o
	g.templates.m = map[string]Template{}
	for _, t := range BuiltinTemplates {
		g.templates.m[t.Name] = t
	}
	g.sub = grid.Subscribe(g.countChange)
	go g.mainLoop()
	return &g, nil
}

func intervalLimit(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

//Grid exposes the underlying grid
func (g *Game) Grid() *universe.Grid {
	return g.grid
}

//Snapshot returns the current generation, [row][col]
func (g *Game) Snapshot() [][]bool {
	return g.grid.Snapshot()
}

//AddTemplate adds the seeding template to the internal storage
//the grid can be populated with this template by call SettleTemplate
func (g *Game) AddTemplate(tmpl Template) {
	g.templates.Lock()
	g.templates.m[tmpl.Name] = tmpl
	g.templates.Unlock()
}

//Template returns the registered template
func (g *Game) Template(name string) (Template, bool) {
	g.templates.Lock()
	defer g.templates.Unlock()
	t, ok := g.templates.m[name]
	return t, ok
}

//Settle activates the cells at the positions, positions outside the grid are ignored
func (g *Game) Settle(ps []universe.Position) {
	g.grid.ActivateMany(ps)
	g.updateLiveCells()
	g.refreshView()
}

//SettleTemplate populates the grid with the seeding template, reports whether the template exists
func (g *Game) SettleTemplate(name string) bool {
	return g.SettleTemplateAt(name, 0, 0)
}

//SettleTemplateAt populates the grid with the template moved by dRow, dCol
func (g *Game) SettleTemplateAt(name string, dRow int, dCol int) bool {
	tmpl, ok := g.Template(name)
	if !ok {
		return false
	}
	g.Settle(tmpl.Offset(dRow, dCol))
	return true
}

//SettleWithRandomData clears the grid and populates it with random data, returns immediately
//it is ignored while the game is running
func (g *Game) SettleWithRandomData(seed int64) {
	mode := g.Status().RunningMode
	if mode != RunningStateManual && mode != RunningStateFinished {
		return
	}
	g.command(g.clear)
	g.command(func() {
		rng := rand.New(rand.NewPCG(uint64(seed), 0))
		var ps []universe.Position
		for row := 0; row < g.grid.Height(); row++ {
			for col := 0; col < g.grid.Width(); col++ {
				if rng.IntN(2) == 1 {
					ps = append(ps, universe.Position{Row: row, Col: col})
				}
			}
		}
		g.grid.ActivateMany(ps)
		g.updateLiveCells()
		g.refreshView()
	})
}

//Toggle inverses the cell state at row, col
func (g *Game) Toggle(row int, col int) {
	g.grid.Toggle(row, col)
	g.updateLiveCells()
	g.refreshView()
}

//HandleToggles forwards external toggle requests into the grid until the channel is closed or ctx is done
func (g *Game) HandleToggles(ctx context.Context, in <-chan ToggleRequest) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-in:
			if !ok {
				g.log.Debug("toggle stream completed")
				return nil
			}
			g.log.Debug("toggle received", "row", t.Row, "col", t.Col, "alive", t.Alive)
			g.grid.SetState(t.Row, t.Col, universe.State(t.Alive))
			g.updateLiveCells()
			g.refreshView()
		}
	}
}

//RegisterViewer registers the viewer - the game will call the viewer when the state is changed
func (g *Game) RegisterViewer(v Viewer) {
	g.views = append(g.views, v)
	v.Register(g)
}

//StateCh returns the channel with the game status updates
func (g *Game) StateCh() chan Status {
	return g.stateCh
}

//Status returns current game status represented by Status struct
func (g *Game) Status() Status {
	g.state.Lock()
	defer g.state.Unlock()
	return g.state.Status
}

//Options returns current game configuration represented by Options struct
func (g *Game) Options() Options {
	g.options.Lock()
	defer g.options.Unlock()
	return g.options.Options
}

//SetInterval changes the interval between the steps, also while running
func (g *Game) SetInterval(d time.Duration) {
	g.options.Lock()
	g.options.Interval = d
	g.options.Unlock()
	g.limiter.SetLimit(intervalLimit(d))
	g.log.Info("interval changed", "interval", d)
	g.refreshView()
}

//Run starts the simulation, returns immediately
func (g *Game) Run() {
	g.command(g.run)
}

//Stop stops the simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (g *Game) Stop() {
	g.command(g.stop)
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (g *Game) Step() {
	g.command(func() { g.advance(false) })
}

//Clear clears the grid (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (g *Game) Clear() {
	g.command(g.clear)
}

//Close stops the main loop and the grid, waits for the loop to exit
func (g *Game) Close() {
	g.closeOnce.Do(func() { close(g.closeCh) })
	<-g.loopDone
}

//command queues fn for the main loop, dropped once the loop has exited
func (g *Game) command(fn func()) {
	select {
	case g.controlCh <- fn:
	case <-g.loopDone:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (g *Game) mainLoop() {
	defer close(g.loopDone)
	for {
		select {
		case cmd := <-g.controlCh:
			cmd()
		case <-g.closeCh:
			g.cancelRun()
			g.sub.Cancel()
			if err := g.grid.Close(); err != nil {
				g.log.Error("grid close failed", "error", err)
			}
			return
		}
	}
}

//switchRunningState switch the state of the game to RunningState
//also writes the new state to the stateCh to signal upper control software
func (g *Game) switchRunningState(to RunningState) {
	g.state.Lock()
	g.state.RunningMode = to
	st := g.state.Status
	g.state.Unlock()
	if g.stateCh != nil {
		g.stateCh <- st
	}
}

//run starts the game simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (g *Game) run() {
	if g.runCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.runCancel = cancel
	g.log.Info("simulation started", "interval", g.Options().Interval, "engine", g.grid.Engine())
	g.switchRunningState(RunningStateRun)
	go g.runLoop(ctx)
}

//runLoop asks the main loop for a transition on every limiter token
func (g *Game) runLoop(ctx context.Context) {
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return
		}
		done := make(chan bool, 1)
		select {
		case g.controlCh <- func() {
			if ctx.Err() != nil {
				done <- false
				return
			}
			done <- g.advance(true)
		}:
		case <-ctx.Done():
			return
		case <-g.loopDone:
			return
		}
		select {
		case more := <-done:
			if !more {
				return
			}
		case <-g.loopDone:
			return
		}
	}
}

func (g *Game) cancelRun() {
	if g.runCancel != nil {
		g.runCancel()
		g.runCancel = nil
	}
}

//stop stops the game running cycle
func (g *Game) stop() {
	g.cancelRun()
	if g.Status().RunningMode == RunningStateRun {
		g.log.Info("simulation stopped", "iteration", g.Status().IterationNum)
		g.switchRunningState(RunningStateManual)
	}
}

//advance does the new one generation for entire grid
//continuous uses the grid transition, otherwise a single tick; returns false when the game finished
func (g *Game) advance(continuous bool) bool {
	rm := g.Status().RunningMode
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	maxIter := g.Options().MaxSteps
	if maxIter != 0 && g.Status().IterationNum >= maxIter {
		g.finish("max steps reached")
		return false
	}

	g.switchRunningState(RunningStateStep)
	var err error
	if continuous {
		err = g.grid.Transition()
	} else {
		err = g.grid.Tick()
	}
	if err != nil {
		g.log.Error("step failed", "error", err)
		g.finish("step failed")
		return false
	}

	st := g.grid.Stats()
	g.state.Lock()
	g.state.IterationNum++
	g.state.LiveCells = st.LiveCells
	g.state.Changes = st.Changes
	g.state.IterationTime = st.Duration
	g.state.Unlock()

	switch {
	case st.LiveCells == 0:
		g.finish("no live cells")
		return false
	case st.Changes == 0:
		g.finish("still life")
		return false
	}
	g.switchRunningState(rm)
	g.refreshView()
	return true
}

func (g *Game) finish(reason string) {
	g.cancelRun()
	g.log.Info("simulation finished", "reason", reason, "iteration", g.Status().IterationNum)
	g.switchRunningState(RunningStateFinished)
	g.refreshView()
}

//clear clears the grid data, reset all counters
func (g *Game) clear() {
	g.cancelRun()
	g.grid.SetAll(universe.Dead)
	g.state.Lock()
	g.state.IterationNum = 0
	g.state.LiveCells = 0
	g.state.Changes = 0
	g.state.Births = 0
	g.state.Deaths = 0
	g.state.IterationTime = 0
	g.state.Unlock()
	g.switchRunningState(RunningStateManual)
	g.refreshView()
}

//countChange is the grid change handler
func (g *Game) countChange(e universe.ChangeEvent) {
	g.state.Lock()
	if e.State == universe.Alive {
		g.state.Births++
	} else {
		g.state.Deaths++
	}
	g.state.Unlock()
}

func (g *Game) updateLiveCells() {
	live := g.grid.LiveCells()
	g.state.Lock()
	g.state.LiveCells = live
	g.state.Unlock()
}

//refreshView calls Refresh event for all registered views
func (g *Game) refreshView() {
	for _, v := range g.views {
		v.Refresh()
	}
}
