package bussystem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip_planner/pkg/dsv"
)

// Stops 5 and 2 share node 1002; stop 2 is canonical.
const indexerStops = `stop_id,node_id
3,1003
1,1001
5,1002
2,1002
4,1004
`

const indexerRoutes = `route,stop_id
Green,1
Green,2
Green,3
Amber,3
Amber,1
`

func loadIndexed(t *testing.T) *Indexer {
	t.Helper()
	bs, err := Load(
		dsv.NewReader(strings.NewReader(indexerStops), ','),
		dsv.NewReader(strings.NewReader(indexerRoutes), ','),
	)
	require.NoError(t, err)
	return NewIndexer(bs)
}

func TestSortedStopAccess(t *testing.T) {
	idx := loadIndexed(t)

	require.Equal(t, 5, idx.StopCount())
	var ids []StopID
	for i := 0; i < idx.StopCount(); i++ {
		ids = append(ids, idx.SortedStopByIndex(i).ID)
	}
	assert.Equal(t, []StopID{1, 2, 3, 4, 5}, ids)
	assert.Nil(t, idx.SortedStopByIndex(5))
}

func TestSortedRouteAccess(t *testing.T) {
	idx := loadIndexed(t)

	require.Equal(t, 2, idx.RouteCount())
	assert.Equal(t, "Amber", idx.SortedRouteByIndex(0).Name)
	assert.Equal(t, "Green", idx.SortedRouteByIndex(1).Name)
	assert.Nil(t, idx.SortedRouteByIndex(2))
}

func TestStopByNodeIDCanonical(t *testing.T) {
	idx := loadIndexed(t)

	// Smallest stop id wins when stops share a node.
	stop := idx.StopByNodeID(1002)
	require.NotNil(t, stop)
	assert.Equal(t, StopID(2), stop.ID)

	assert.Nil(t, idx.StopByNodeID(9999))
}

func TestRouteBetweenNodeIDs(t *testing.T) {
	idx := loadIndexed(t)

	// Green: 1001 -> 1002 -> 1003; Amber: 1003 -> 1001.
	assert.True(t, idx.RouteBetweenNodeIDs(1001, 1003))
	assert.True(t, idx.RouteBetweenNodeIDs(1003, 1001))
	assert.True(t, idx.RouteBetweenNodeIDs(1002, 1003))

	// Order matters: nothing runs 1002 -> 1001.
	assert.False(t, idx.RouteBetweenNodeIDs(1002, 1001))

	// Stop that no route serves, or unknown node.
	assert.False(t, idx.RouteBetweenNodeIDs(1001, 1004))
	assert.False(t, idx.RouteBetweenNodeIDs(1001, 9999))
}

func TestRoutesByNodeIDs(t *testing.T) {
	idx := loadIndexed(t)

	routes := idx.RoutesByNodeIDs(1001, 1003)
	require.Len(t, routes, 1)
	assert.Equal(t, "Green", routes[0].Name)

	assert.Empty(t, idx.RoutesByNodeIDs(1002, 1001))
	assert.Empty(t, idx.RoutesByNodeIDs(9999, 1003))
}
