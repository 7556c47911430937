package universe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//finishes fails the test when fn does not return in time
func finishes(t *testing.T, timeout time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s did not return within %v", what, timeout)
	}
}

func TestGrid_HandlerReadsWhileStepping(t *testing.T) {
	forEachSetup(t, func(t *testing.T, o Options) {
		g := newTestGrid(t, o, 20, 20, glider...)
		g.ActivateMany([]Position{{10, 9}, {10, 10}, {10, 11}})

		var reads int
		var mu sync.Mutex
		g.Subscribe(func(ChangeEvent) {
			snap := g.Snapshot()
			mu.Lock()
			reads += len(snap)
			mu.Unlock()
		})

		finishes(t, 10*time.Second, "stepping with a reading subscriber", func() {
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					g.Toggle(i%20, (i*7)%20)
				}
			}()
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					assert.NoError(t, g.Transition())
				}
			}()
			wg.Wait()
		})
		mu.Lock()
		defer mu.Unlock()
		assert.NotZero(t, reads)
	})
}

func TestGrid_HandlerMutatesGrid(t *testing.T) {
	forEachSetup(t, func(t *testing.T, o Options) {
		g := newTestGrid(t, o, 5, 5)

		var events []ChangeEvent
		g.Subscribe(func(e ChangeEvent) {
			events = append(events, e)
			if e.Row == 0 && e.Col == 0 && e.State == Alive {
				g.SetState(4, 4, Alive)
			}
		})

		finishes(t, 5*time.Second, "Activate with a mutating subscriber", func() {
			g.Activate(0, 0)
		})
		assert.Equal(t, Alive, g.StateAt(4, 4))
		assert.Equal(t, []ChangeEvent{
			{Row: 0, Col: 0, State: Alive},
			{Row: 4, Col: 4, State: Alive},
		}, events)
	})
}

func TestGrid_HandlerStepsGrid(t *testing.T) {
	forEachSetup(t, func(t *testing.T, o Options) {
		g := newTestGrid(t, o, 5, 5)

		stepped := false
		g.Subscribe(func(e ChangeEvent) {
			if !stepped && e.Row == 2 && e.Col == 3 {
				stepped = true
				assert.NoError(t, g.Tick())
			}
		})

		finishes(t, 5*time.Second, "ActivateMany with a stepping subscriber", func() {
			g.ActivateMany(blinkerH)
		})
		assert.Equal(t, uint64(1), g.Generation())
		assert.Equal(t, positionSet(blinkerV...), livePositions(g))
	})
}

func TestGrid_EventsKeepCommitOrder(t *testing.T) {
	g := newTestGrid(t, Options{}, 5, 5, blinkerH...)

	var gens []uint64
	g.Subscribe(func(e ChangeEvent) {
		gens = append(gens, e.Generation)
		if e.Generation == 1 && len(gens) == 1 {
			//queued behind the rest of generation 1
			g.Activate(0, 0)
		}
	})
	require.NoError(t, g.Tick())
	assert.Equal(t, []uint64{1, 1, 1, 1, 1}, gens)
	assert.Equal(t, Alive, g.StateAt(0, 0))
}

func TestGrid_PanickingHandlerReleasesDispatch(t *testing.T) {
	g := newTestGrid(t, Options{}, 5, 5)

	var calls int
	sub := g.Subscribe(func(ChangeEvent) { panic("handler failure") })
	assert.Panics(t, func() { g.Activate(1, 1) })
	sub.Cancel()

	g.Subscribe(func(ChangeEvent) { calls++ })
	finishes(t, 5*time.Second, "Activate after a panicking subscriber", func() {
		g.Activate(2, 2)
	})
	assert.Equal(t, 1, calls)
}
