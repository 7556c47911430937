package universe

import (
	"sort"
	"sync"
)

//Engine is the tick bus of a grid: it turns the latched generation N of the arena into generation N+1
//engines never write the arena, the grid commits next after Step returns
type Engine interface {
	//Wire performs the one-time start broadcast, every cell publishes its current state
	Wire()
	//Step computes the next state of every cell into next (indexed like the arena)
	Step(next []State) error
	//Republish replaces the value cell i has published for the coming generation
	//it is only called between steps, after Wire
	Republish(i int, s State)
	Close()
}

//EngineFactory builds an engine bound to the arena and the rule
//workers is a hint, engines that do not parallelize ignore it
type EngineFactory func(cells []Cell, rule Rule, workers int) Engine

const DefEngine = "sequential"

var (
	enginesMu sync.RWMutex
	engines   = map[string]EngineFactory{
		"sequential": newSequentialEngine,
		"parallel":   newParallelEngine,
		"actors":     newActorEngine,
	}
)

//RegisterEngine adds an engine under the name, existing names are replaced
func RegisterEngine(name string, f EngineFactory) {
	if name == "" || f == nil {
		return
	}
	enginesMu.Lock()
	engines[name] = f
	enginesMu.Unlock()
}

//Engines returns the registered engine names sorted
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func lookupEngine(name string) (EngineFactory, bool) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	f, ok := engines[name]
	return f, ok
}

//nextState gathers the latched neighbour states of cell i into buf and lets the cell derive its next state
//buf needs room for maxNeighbours values
func nextState(cells []Cell, i int, rule Rule, buf []State) State {
	c := &cells[i]
	buf = buf[:0]
	for _, n := range c.neighbours {
		buf = append(buf, cells[n].state)
	}
	return c.OnTick(rule, buf...)
}
