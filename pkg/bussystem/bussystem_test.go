package bussystem

import (
	"strings"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip_planner/pkg/dsv"
)

const sampleStops = `stop_id,node_id
1,1001
2,1002
3,1003
4,1002
`

const sampleRoutes = `route,stop_id
A,1
A,2
B,3
A,3
B,1
`

func loadSample(t *testing.T) *BusSystem {
	t.Helper()
	bs, err := Load(
		dsv.NewReader(strings.NewReader(sampleStops), ','),
		dsv.NewReader(strings.NewReader(sampleRoutes), ','),
	)
	require.NoError(t, err)
	return bs
}

func TestLoadStops(t *testing.T) {
	bs := loadSample(t)

	assert.Equal(t, 4, bs.StopCount())
	assert.Equal(t, StopID(1), bs.StopByIndex(0).ID)
	assert.Equal(t, osm.NodeID(1001), bs.StopByIndex(0).NodeID)
	assert.Nil(t, bs.StopByIndex(4))

	stop := bs.StopByID(3)
	require.NotNil(t, stop)
	assert.Equal(t, osm.NodeID(1003), stop.NodeID)
	assert.Nil(t, bs.StopByID(99))
}

func TestLoadRoutesAggregation(t *testing.T) {
	bs := loadSample(t)

	// First-appearance order across the stream.
	require.Equal(t, 2, bs.RouteCount())
	assert.Equal(t, "A", bs.RouteByIndex(0).Name)
	assert.Equal(t, "B", bs.RouteByIndex(1).Name)
	assert.Nil(t, bs.RouteByIndex(2))

	// Interleaved rows still aggregate in textual order.
	a := bs.RouteByName("A")
	require.NotNil(t, a)
	assert.Equal(t, []StopID{1, 2, 3}, a.Stops)
	assert.Equal(t, 3, a.StopCount())

	b := bs.RouteByName("B")
	require.NotNil(t, b)
	assert.Equal(t, []StopID{3, 1}, b.Stops)

	assert.Nil(t, bs.RouteByName("C"))
}

func TestLoadSkipsBadRows(t *testing.T) {
	stops := "stop_id,node_id\n1,1001\nonly-one-field\nx,1002\n2,y\n3,1003\n"
	routes := "route,stop_id\nA,1\nA\nA,zzz\nA,3\n"

	bs, err := Load(
		dsv.NewReader(strings.NewReader(stops), ','),
		dsv.NewReader(strings.NewReader(routes), ','),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, bs.StopCount())
	assert.Equal(t, []StopID{1, 3}, bs.RouteByName("A").Stops)
	assert.Equal(t, 5, bs.DroppedRows())
}

func TestLoadEmptyStreams(t *testing.T) {
	bs, err := Load(
		dsv.NewReader(strings.NewReader(""), ','),
		dsv.NewReader(strings.NewReader(""), ','),
	)
	require.NoError(t, err)
	assert.Zero(t, bs.StopCount())
	assert.Zero(t, bs.RouteCount())
}
