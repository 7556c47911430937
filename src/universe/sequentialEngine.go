package universe

/*
	Sequential engine with two buffers
	All cells state is calculated to the next buffer from the latched arena, then the grid commits the buffer.
	The latched arena itself is the broadcast every cell publishes to its neighbours,
	so the start broadcast and republishing are implicit.
*/
type sequentialEngine struct {
	cells []Cell
	rule  Rule
	buf   [maxNeighbours]State
}

func newSequentialEngine(cells []Cell, rule Rule, _ int) Engine {
	return &sequentialEngine{cells: cells, rule: rule}
}

func (e *sequentialEngine) Wire() {}

func (e *sequentialEngine) Step(next []State) error {
	for i := range e.cells {
		next[i] = nextState(e.cells, i, e.rule, e.buf[:])
	}
	return nil
}

func (e *sequentialEngine) Republish(int, State) {}

func (e *sequentialEngine) Close() {}
