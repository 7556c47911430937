package view

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifegrid/src/game"
)

func TestFormatGrid(t *testing.T) {
	snapshot := [][]bool{
		{false, true, false},
		{true, true, false},
	}
	want := "---------\n" +
		"| . # . |\n" +
		"| # # . |\n" +
		"---------\n"
	assert.Equal(t, want, FormatGrid(snapshot, "#", "."))
	assert.Equal(t, "", FormatGrid(nil, "#", "."))
}

//syncBuffer is written by the game loop and read by the test
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestConsoleOut(t *testing.T) {
	o := game.DefaultOptions
	o.Width = 5
	o.Height = 5
	o.Interval = 0
	o.MaxSteps = 3
	o.Rule = "conway"
	stateCh := make(chan game.Status, 100)
	g, err := game.New(&o, stateCh)
	require.NoError(t, err)
	defer g.Close()

	var out syncBuffer
	v := NewConsoleOut(&out, false)
	g.RegisterViewer(v)
	require.True(t, g.SettleTemplate("blinker"))
	v.Start()

	header := out.String()
	assert.Contains(t, header, "Running configuration:")
	assert.Contains(t, header, "  Dimension: 5 x 5\n")
	assert.Contains(t, header, "  Engine: sequential\n")
	assert.Contains(t, header, "  Max iterations: 3 steps\n")
	assert.Contains(t, header, "  Rule: B3/S23\n")
	assert.Contains(t, header, "Simulation started...")

	g.Run()
	timeout := time.After(5 * time.Second)
	for finished := false; !finished; {
		select {
		case st := <-stateCh:
			finished = st.RunningMode == game.RunningStateFinished
		case <-timeout:
			t.Fatal("timeout waiting for the game to finish")
		}
	}

	//the refresh follows the finished status
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Finished:")
	}, 5*time.Second, 10*time.Millisecond)
	res := out.String()
	assert.Contains(t, res, "  Last iteration: 3\n")
	assert.Contains(t, res, "  Live cells: 3\n")
	assert.Contains(t, res, FormatGrid(g.Snapshot(), "#", "."))
	assert.Contains(t, res, "| . . # . . |\n")
}
