package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/logrusorgru/aurora"

	"lifegrid/src/game"
)

//ConsoleOut is the non-interactive viewer, prints the progress and the final grid
type ConsoleOut struct {
	g         *game.Game
	w         io.Writer
	au        aurora.Aurora
	startTime time.Time
	lastShown int
	mu        sync.Mutex
}

//NewConsoleOut creates the viewer writing to w (stdout when nil), colors enables ANSI colors
func NewConsoleOut(w io.Writer, colors bool) *ConsoleOut {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors), lastShown: -1}
}

func (c *ConsoleOut) Refresh() {
	st := c.g.Status()
	c.mu.Lock()
	defer c.mu.Unlock()
	if st.RunningMode == game.RunningStateFinished {
		if c.lastShown == st.IterationNum {
			return
		}
		c.lastShown = st.IterationNum
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Live cells":     st.LiveCells,
			"Births":         st.Births,
			"Deaths":         st.Deaths,
		}
		fmt.Fprintln(c.w, c.au.Red("\nFinished:"))
		c.printHashData(resultData)
		fmt.Fprint(c.w, FormatGrid(c.g.Snapshot(), "#", "."))
	} else if st.RunningMode == game.RunningStateRun {
		if st.IterationNum%10 == 0 && st.IterationNum != c.lastShown {
			c.lastShown = st.IterationNum
			fmt.Fprintf(c.w, "  Iterations done: %v, live cells: %v\n", c.au.Cyan(st.IterationNum), st.LiveCells)
		}
	}
}

func (c *ConsoleOut) Register(g *game.Game) {
	c.g = g
	o := g.Options()
	grid := g.Grid()
	fmt.Fprintln(c.w, c.au.Green("Running configuration:"))
	c.printHashData(map[string]interface{}{
		"Dimension":      fmt.Sprintf("%v x %v", o.Width, o.Height),
		"Interval":       o.Interval,
		"Max iterations": fmt.Sprintf("%v steps", o.MaxSteps),
		"Rule":           grid.Rule().String(),
		"Engine":         grid.Engine(),
	})
}

func (c *ConsoleOut) Start() {
	c.mu.Lock()
	c.startTime = time.Now()
	c.mu.Unlock()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}

//FormatGrid renders a snapshot as a bordered table, one cell per filler
func FormatGrid(snapshot [][]bool, live string, dead string) string {
	if len(snapshot) == 0 {
		return ""
	}
	border := "---" + strings.Repeat("-", len(snapshot[0])*2) + "\n"
	var b strings.Builder
	b.WriteString(border)
	for _, row := range snapshot {
		b.WriteString("| ")
		for j, alive := range row {
			if j != 0 {
				b.WriteByte(' ')
			}
			if alive {
				b.WriteString(live)
			} else {
				b.WriteString(dead)
			}
		}
		b.WriteString(" |\n")
	}
	b.WriteString(border)
	return b.String()
}
