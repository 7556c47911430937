package universe

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

/*
	Engine with multithreaded computation algorithm
	the arena is splitted into the ranges each of which is computed by individual goroutine
	every goroutine only reads the latched arena and only writes its own slots of next
*/

const (
	DefMinCellsPerWorker = 64 //minimum cells for one worker when the worker count is not given
)

//workRange describes the arena slots [from, to) of one worker
type workRange struct {
	from int
	to   int
}

type parallelEngine struct {
	cells  []Cell
	rule   Rule
	ranges []workRange
}

func newParallelEngine(cells []Cell, rule Rule, workers int) Engine {
	pe := parallelEngine{cells: cells, rule: rule}
	minPerWorker := 1
	if workers <= 0 {
		workers = runtime.NumCPU()
		minPerWorker = DefMinCellsPerWorker
	}
	perWorker := (len(cells) + workers - 1) / workers
	if perWorker < minPerWorker {
		perWorker = minPerWorker
	}
	for from := 0; from < len(cells); from += perWorker {
		pe.ranges = append(pe.ranges, workRange{from: from, to: min(from+perWorker, len(cells))})
	}
	return &pe
}

func (e *parallelEngine) Wire() {}

//Step starts one goroutine per range and waits for all of them
func (e *parallelEngine) Step(next []State) error {
	var eg errgroup.Group
	for _, wr := range e.ranges {
		wr := wr
		eg.Go(func() error {
			var buf [maxNeighbours]State
			for i := wr.from; i < wr.to; i++ {
				next[i] = nextState(e.cells, i, e.rule, buf[:])
			}
			return nil
		})
	}
	return eg.Wait()
}

func (e *parallelEngine) Republish(int, State) {}

func (e *parallelEngine) Close() {}
