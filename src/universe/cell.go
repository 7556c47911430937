package universe

//State is the value of a cell for one generation
type State bool

const (
	Dead  State = false
	Alive State = true
)

func (s State) String() string {
	if s {
		return "alive"
	}
	return "dead"
}

//Position is a (row, col) pair on the grid
type Position struct {
	Row int
	Col int
}

//Cell is one unit of the arena
//neighbours are arena indices of the in-bounds Moore neighbourhood, set once at construction
type Cell struct {
	pos        Position
	state      State
	neighbours []int
	sentinel   bool
}

func newSentinel() Cell {
	return Cell{pos: Position{Row: -1, Col: -1}, sentinel: true}
}

//State returns the latched value of the current generation
func (c Cell) State() State {
	return c.state
}

func (c Cell) Position() Position {
	return c.pos
}

//Neighbours returns the size of the neighbourhood (0..8)
func (c Cell) Neighbours() int {
	return len(c.neighbours)
}

//IsSentinel reports whether the cell is the out-of-bounds placeholder
func (c Cell) IsSentinel() bool {
	return c.sentinel
}

//OnTick derives the next state from the previous-generation states of the neighbours
func (c Cell) OnTick(rule Rule, neighbours ...State) State {
	living := 0
	for _, s := range neighbours {
		if s == Alive {
			living++
		}
	}
	return rule.Next(c.state, living)
}

//setState forces a value and reports whether it changed, the sentinel never changes
func (c *Cell) setState(s State) bool {
	if c.sentinel || c.state == s {
		return false
	}
	c.state = s
	return true
}
