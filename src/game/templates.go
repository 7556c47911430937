package game

import "lifegrid/src/universe"

//Template represent the seeding template which can used to settle the grid with predefined data
type Template struct {
	Name        string              //template name
	Descr       string              //template descr
	Coordinates []universe.Position //cells to activate
}

//BuiltinTemplates are registered in every new game
var BuiltinTemplates = []Template{
	{"testSample1", "the test sample with 3 stable patterns", positions(
		[2]int{1, 1}, [2]int{2, 1}, [2]int{1, 2}, [2]int{2, 2},
		[2]int{3, 3}, [2]int{2, 4}, [2]int{3, 4}, [2]int{3, 5},
	)},
	{"blinker", "period 2 oscillator", positions(
		[2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3},
	)},
	{"glider", "moves by (+1,+1) every 4 generations", positions(
		[2]int{2, 0}, [2]int{3, 1}, [2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2},
	)},
	{"block", "still life", positions(
		[2]int{1, 1}, [2]int{1, 2}, [2]int{2, 1}, [2]int{2, 2},
	)},
	{"beehive", "still life", positions(
		[2]int{1, 2}, [2]int{1, 3}, [2]int{2, 1}, [2]int{2, 4}, [2]int{3, 2}, [2]int{3, 3},
	)},
	{"toad", "period 2 oscillator", positions(
		[2]int{2, 2}, [2]int{2, 3}, [2]int{2, 4}, [2]int{3, 1}, [2]int{3, 2}, [2]int{3, 3},
	)},
	{"beacon", "period 2 oscillator", positions(
		[2]int{1, 1}, [2]int{1, 2}, [2]int{2, 1}, [2]int{2, 2},
		[2]int{3, 3}, [2]int{3, 4}, [2]int{4, 3}, [2]int{4, 4},
	)},
	{"r-pentomino", "methuselah, stabilizes after 1103 generations on an unbounded plane", positions(
		[2]int{1, 2}, [2]int{1, 3}, [2]int{2, 1}, [2]int{2, 2}, [2]int{3, 2},
	)},
}

//positions converts [row, col] pairs
func positions(rc ...[2]int) []universe.Position {
	res := make([]universe.Position, len(rc))
	for i, p := range rc {
		res[i] = universe.Position{Row: p[0], Col: p[1]}
	}
	return res
}

//Offset returns the template coordinates moved by dRow, dCol
func (t Template) Offset(dRow int, dCol int) []universe.Position {
	res := make([]universe.Position, len(t.Coordinates))
	for i, p := range t.Coordinates {
		res[i] = universe.Position{Row: p.Row + dRow, Col: p.Col + dCol}
	}
	return res
}
