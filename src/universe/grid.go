package universe

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lifegrid/src/logging"
)

//RunMode is the state of the grid stepping state machine
type RunMode int

const (
	Stopped RunMode = iota
	Running
)

func (m RunMode) String() string {
	if m == Running {
		return "running"
	}
	return "stopped"
}

//Options represents the grid configurable options
type Options struct {
	Width    int
	Height   int
	Rule     string //rule string or catalogue name, empty means B3/S23
	Engine   string //registered engine name, empty means DefEngine
	Workers  int    //engine parallelism hint, 0 means the number of CPUs
	Order    Order  //storage addressing, empty means row-major
	Logger   *slog.Logger
	Recorder Recorder
}

//Recorder observes every committed generation
type Recorder interface {
	ObserveGeneration(engine string, st GenerationStats)
}

//GenerationStats describes the last committed generation
type GenerationStats struct {
	Generation uint64
	Changes    int
	LiveCells  int
	Duration   time.Duration
}

//Grid owns the cell arena, the neighbour graph and the tick bus
type Grid struct {
	width      int
	height     int
	addr       Addressing
	rule       Rule
	cells      []Cell
	next       []State
	sentinel   Cell
	engine     Engine
	engineName string

	mu     sync.RWMutex
	mode   RunMode
	wired  bool
	closed bool
	stats  GenerationStats

	//events committed but not yet dispatched, in commit order
	//qmu is a leaf lock: never held while taking mu or calling handlers
	qmu         sync.Mutex
	queue       []ChangeEvent
	dispatching bool
	bus         changeBus

	log *slog.Logger
	rec Recorder
}

//NewGrid creates a grid with the rule on the default engine, the zero Rule means B3/S23
func NewGrid(width int, height int, rule Rule) (*Grid, error) {
	return build(Options{Width: width, Height: height}, rule)
}

//New creates a grid described by the options
func New(o Options) (*Grid, error) {
	rule, err := LookupRule(o.Rule)
	if err != nil {
		return nil, err
	}
	return build(o, rule)
}

func build(o Options, rule Rule) (*Grid, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, &InvalidDimensionsError{Width: o.Width, Height: o.Height}
	}
	if rule.IsZero() {
		rule = DefaultRule()
	}
	if o.Engine == "" {
		o.Engine = DefEngine
	}
	factory, ok := lookupEngine(o.Engine)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, o.Engine)
	}
	addr, err := NewAddressing(o.Order, o.Width, o.Height)
	if err != nil {
		return nil, err
	}
	logger := o.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	g := Grid{
		width:      o.Width,
		height:     o.Height,
		addr:       addr,
		rule:       rule,
		sentinel:   newSentinel(),
		engineName: o.Engine,
		log:        logger.With("component", "grid"),
		rec:        o.Recorder,
	}
	g.initArena()
	g.introduceNeighbours()
	g.engine = factory(g.cells, g.rule, o.Workers)
	g.log.Debug("grid created",
		"width", g.width, "height", g.height, "rule", g.rule.String(), "engine", g.engineName)
	return &g, nil
}

//initArena allocates every cell dead at its position
func (g *Grid) initArena() {
	n := g.width * g.height
	g.cells = make([]Cell, n)
	g.next = make([]State, n)
	for i := range g.cells {
		row, col := g.addr.FromIndex(i)
		g.cells[i] = Cell{pos: Position{Row: row, Col: col}}
	}
}

//introduceNeighbours attaches the in-bounds Moore neighbourhood to every cell
func (g *Grid) introduceNeighbours() {
	for i := range g.cells {
		c := &g.cells[i]
		c.neighbours = make([]int, 0, maxNeighbours)
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				if n, ok := g.index(c.pos.Row+dr, c.pos.Col+dc); ok {
					c.neighbours = append(c.neighbours, n)
				}
			}
		}
	}
}

func (g *Grid) insideBounds(row int, col int) bool {
	return row >= 0 && col >= 0 && row < g.height && col < g.width
}

func (g *Grid) index(row int, col int) (int, bool) {
	if !g.insideBounds(row, col) {
		return 0, false
	}
	return g.addr.ToIndex(row, col), true
}

func (g *Grid) Width() int     { return g.width }
func (g *Grid) Height() int    { return g.height }
func (g *Grid) Rule() Rule     { return g.rule }
func (g *Grid) Engine() string { return g.engineName }

//Subscribe registers a handler for per-cell change events
func (g *Grid) Subscribe(fn ChangeHandler) Subscription {
	return g.bus.add(fn)
}

//CellAt returns a copy of the cell at row, col, or the sentinel outside the grid
func (g *Grid) CellAt(row int, col int) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i, ok := g.index(row, col); ok {
		return g.cells[i]
	}
	return g.sentinel
}

//StateAt returns the latched state at row, col, dead outside the grid
func (g *Grid) StateAt(row int, col int) State {
	return g.CellAt(row, col).State()
}

//Activate sets the cell alive, does nothing outside the grid
func (g *Grid) Activate(row int, col int) {
	g.SetState(row, col, Alive)
}

//ActivateMany sets every listed cell alive, positions outside the grid are skipped
func (g *Grid) ActivateMany(ps []Position) {
	g.mu.Lock()
	var events []ChangeEvent
	for _, p := range ps {
		events = g.setLocked(p.Row, p.Col, Alive, events)
	}
	g.unlockAndEmit(events)
}

//SetState forces the cell state bypassing the rule
func (g *Grid) SetState(row int, col int, s State) {
	g.mu.Lock()
	events := g.setLocked(row, col, s, nil)
	g.unlockAndEmit(events)
}

//Toggle inverts the cell state and returns the new one, dead outside the grid
func (g *Grid) Toggle(row int, col int) State {
	g.mu.Lock()
	i, ok := g.index(row, col)
	if !ok {
		g.mu.Unlock()
		return Dead
	}
	s := !g.cells[i].state
	events := g.setLocked(row, col, s, nil)
	g.unlockAndEmit(events)
	return s
}

//SetAll forces every cell to the state
func (g *Grid) SetAll(s State) {
	g.mu.Lock()
	var events []ChangeEvent
	for i := range g.cells {
		events = g.setIndexLocked(i, s, events)
	}
	g.unlockAndEmit(events)
}

func (g *Grid) setLocked(row int, col int, s State, events []ChangeEvent) []ChangeEvent {
	i, ok := g.index(row, col)
	if !ok {
		g.sentinel.setState(s)
		return events
	}
	return g.setIndexLocked(i, s, events)
}

func (g *Grid) setIndexLocked(i int, s State, events []ChangeEvent) []ChangeEvent {
	c := &g.cells[i]
	if !c.setState(s) {
		return events
	}
	if g.wired && !g.closed {
		g.engine.Republish(i, s)
	}
	return append(events, ChangeEvent{Row: c.pos.Row, Col: c.pos.Col, State: s, Generation: g.stats.Generation})
}

//unlockAndEmit queues the events, releases the grid and drains the queue
//unless another caller is already draining it, the caller must hold mu
func (g *Grid) unlockAndEmit(events []ChangeEvent) {
	drain := g.enqueue(events)
	g.mu.Unlock()
	if drain {
		g.drain()
	}
}

//enqueue appends events and reports whether the caller has to drain the queue
func (g *Grid) enqueue(events []ChangeEvent) bool {
	if len(events) == 0 {
		return false
	}
	g.qmu.Lock()
	defer g.qmu.Unlock()
	g.queue = append(g.queue, events...)
	if g.dispatching {
		return false
	}
	g.dispatching = true
	return true
}

//drain dispatches queued batches until the queue is empty
//events queued by handlers, or by other goroutines meanwhile, are delivered by this loop
func (g *Grid) drain() {
	done := false
	defer func() {
		if !done {
			//a handler panicked, the next caller takes over
			g.qmu.Lock()
			g.dispatching = false
			g.qmu.Unlock()
		}
	}()
	for {
		g.qmu.Lock()
		batch := g.queue
		g.queue = nil
		if len(batch) == 0 {
			g.dispatching = false
			g.qmu.Unlock()
			done = true
			return
		}
		g.qmu.Unlock()
		g.bus.dispatch(batch)
	}
}

//Snapshot returns the latched generation as rows of booleans, [row][col]
func (g *Grid) Snapshot() [][]bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b := make([]bool, g.width*g.height)
	res := make([][]bool, g.height)
	for r := range res {
		start := g.width * r
		res[r] = b[start : start+g.width : start+g.width]
	}
	for _, c := range g.cells {
		res[c.pos.Row][c.pos.Col] = bool(c.state)
	}
	return res
}

//LiveCells counts the living cells of the latched generation
func (g *Grid) LiveCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	live := 0
	for _, c := range g.cells {
		if c.state {
			live++
		}
	}
	return live
}

//Generation returns the number of generations computed so far
func (g *Grid) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stats.Generation
}

//Stats returns the statistics of the last committed generation
func (g *Grid) Stats() GenerationStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stats
}

func (g *Grid) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mode == Running
}

//Transition switches a stopped grid to running (broadcasting the start on first use) and steps once
//the grid stays running afterwards
func (g *Grid) Transition() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	if g.mode == Stopped {
		g.mode = Running
		g.log.Debug("grid running", "generation", g.stats.Generation)
	}
	g.wire()
	events, err := g.pulse()
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.unlockAndEmit(events)
	return nil
}

//Tick steps the grid exactly once and leaves it stopped
func (g *Grid) Tick() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	g.wire()
	events, err := g.pulse()
	g.mode = Stopped
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.unlockAndEmit(events)
	return nil
}

//Close stops the engine, every later step returns ErrClosed
func (g *Grid) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	g.mode = Stopped
	g.engine.Close()
	g.log.Debug("grid closed", "generation", g.stats.Generation)
	return nil
}

//wire performs the start broadcast once per grid lifetime
func (g *Grid) wire() {
	if g.wired {
		return
	}
	g.engine.Wire()
	g.wired = true
	g.log.Debug("start broadcast done", "cells", len(g.cells))
}

//pulse computes one generation and commits it, returning the change events in arena order
func (g *Grid) pulse() ([]ChangeEvent, error) {
	start := time.Now()
	if err := g.engine.Step(g.next); err != nil {
		return nil, fmt.Errorf("step generation %d: %w", g.stats.Generation+1, err)
	}
	gen := g.stats.Generation + 1
	var events []ChangeEvent
	live := 0
	for i := range g.cells {
		c := &g.cells[i]
		if c.setState(g.next[i]) {
			events = append(events, ChangeEvent{Row: c.pos.Row, Col: c.pos.Col, State: c.state, Generation: gen})
		}
		if c.state {
			live++
		}
	}
	g.stats = GenerationStats{
		Generation: gen,
		Changes:    len(events),
		LiveCells:  live,
		Duration:   time.Since(start),
	}
	if g.rec != nil {
		g.rec.ObserveGeneration(g.engineName, g.stats)
	}
	return events, nil
}
