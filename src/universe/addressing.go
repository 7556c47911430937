package universe

import "fmt"

//Addressing maps a (row, col) position to a linear arena slot and back
//both directions are pure and only valid inside [0, width*height)
type Addressing interface {
	ToIndex(row int, col int) int
	FromIndex(i int) (row int, col int)
}

//Order selects the Addressing strategy used by the grid storage
type Order string

const (
	OrderRowMajor Order = "row-major"
	OrderColMajor Order = "col-major"
)

//RowMajor lays rows out one after another, the leading dimension is the width
type RowMajor struct {
	Width int
}

func (a RowMajor) ToIndex(row int, col int) int {
	return a.Width*row + col
}

func (a RowMajor) FromIndex(i int) (row int, col int) {
	row = i / a.Width
	col = i - row*a.Width
	return
}

//ColMajor lays columns out one after another, the leading dimension is the height
type ColMajor struct {
	Height int
}

func (a ColMajor) ToIndex(row int, col int) int {
	return a.Height*col + row
}

func (a ColMajor) FromIndex(i int) (row int, col int) {
	col = i / a.Height
	row = i - col*a.Height
	return
}

//NewAddressing returns the strategy for the order, empty order means row-major
func NewAddressing(o Order, width int, height int) (Addressing, error) {
	switch o {
	case OrderRowMajor, "":
		return RowMajor{Width: width}, nil
	case OrderColMajor:
		return ColMajor{Height: height}, nil
	}
	return nil, fmt.Errorf("unknown addressing order %q", o)
}
