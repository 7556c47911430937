package universe

import (
	"fmt"
	"sync"
)

/*
	Engine with one goroutine per cell
	every cell publishes exactly one value per generation into a FIFO edge channel of each of its neighbours.
	On the tick a cell takes the head value of every incoming edge (the previous generation of that neighbour),
	computes its next state and publishes it. A fast neighbour may already have pushed its next generation
	behind the head, so an edge holds at most two values; a third one means some cell published twice
	for one generation.
*/

const edgeSlots = 2

type actor struct {
	idx  int
	tick chan []State
	in   []chan State //incoming edges, same order as the cell neighbours
	out  []chan State //incoming edges of the neighbours fed by this cell
	buf  []State
}

type actorEngine struct {
	cells  []Cell
	rule   Rule
	actors []actor
	wired  bool
	stepWg sync.WaitGroup
	exitWg sync.WaitGroup
	stop   chan struct{}
}

func newActorEngine(cells []Cell, rule Rule, _ int) Engine {
	ae := actorEngine{
		cells:  cells,
		rule:   rule,
		actors: make([]actor, len(cells)),
		stop:   make(chan struct{}),
	}
	for i := range cells {
		ae.actors[i] = actor{
			idx:  i,
			tick: make(chan []State, 1),
			in:   make([]chan State, len(cells[i].neighbours)),
			buf:  make([]State, len(cells[i].neighbours)),
		}
	}
	for i := range cells {
		for k, n := range cells[i].neighbours {
			edge := make(chan State, edgeSlots)
			ae.actors[i].in[k] = edge
			ae.actors[n].out = append(ae.actors[n].out, edge)
		}
	}
	return &ae
}

//Wire starts the actors and publishes the seeded generation
func (e *actorEngine) Wire() {
	if e.wired {
		return
	}
	e.wired = true
	for i := range e.actors {
		a := &e.actors[i]
		e.exitWg.Add(1)
		go e.live(a)
	}
	for i := range e.actors {
		e.actors[i].publish(e.cells[i].state)
	}
}

//Step pulses every actor once and waits until all of them published the new generation
func (e *actorEngine) Step(next []State) error {
	if !e.wired {
		return fmt.Errorf("actor engine stepped before the start broadcast")
	}
	e.stepWg.Add(len(e.actors))
	for i := range e.actors {
		e.actors[i].tick <- next
	}
	e.stepWg.Wait()
	return nil
}

//Republish swaps the value waiting in every outgoing edge of cell i
//between steps each edge holds exactly the one value of the current generation
func (e *actorEngine) Republish(i int, s State) {
	if !e.wired {
		return
	}
	for _, edge := range e.actors[i].out {
		select {
		case <-edge:
		default:
			panic(fmt.Sprintf("universe: cell %v has no pending value to replace", e.cells[i].pos))
		}
		edge <- s
	}
}

func (e *actorEngine) Close() {
	if !e.wired {
		return
	}
	close(e.stop)
	e.exitWg.Wait()
	e.wired = false
}

//live is the actor loop: wait for the tick, aggregate, compute, publish
func (e *actorEngine) live(a *actor) {
	defer e.exitWg.Done()
	for {
		select {
		case <-e.stop:
			return
		case next := <-a.tick:
			for k, edge := range a.in {
				a.buf[k] = <-edge
			}
			s := e.cells[a.idx].OnTick(e.rule, a.buf...)
			next[a.idx] = s
			a.publish(s)
			e.stepWg.Done()
		}
	}
}

func (a *actor) publish(s State) {
	for _, edge := range a.out {
		select {
		case edge <- s:
		default:
			panic(fmt.Sprintf("universe: cell %d published twice for one generation", a.idx))
		}
	}
}
