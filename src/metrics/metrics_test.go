package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifegrid/src/universe"
)

func TestCollector_ObserveGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveGeneration("actors", universe.GenerationStats{Generation: 1, Changes: 4, LiveCells: 3, Duration: time.Millisecond})
	c.ObserveGeneration("actors", universe.GenerationStats{Generation: 2, Changes: 4, LiveCells: 3, Duration: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.generations.WithLabelValues("actors")))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.changes.WithLabelValues("actors")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.liveCells.WithLabelValues("actors")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestCollector_WiredIntoGrid(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	g, err := universe.New(universe.Options{Width: 5, Height: 5, Recorder: c})
	require.NoError(t, err)
	defer g.Close()
	g.ActivateMany([]universe.Position{{Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}})

	require.NoError(t, g.Tick())
	require.NoError(t, g.Tick())

	assert.Equal(t, 2.0, testutil.ToFloat64(c.generations.WithLabelValues(universe.DefEngine)))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.changes.WithLabelValues(universe.DefEngine)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.liveCells.WithLabelValues(universe.DefEngine)))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveGeneration("sequential", universe.GenerationStats{Changes: 1, LiveCells: 1})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lifegrid_generations_total{engine="sequential"} 1`)
}
