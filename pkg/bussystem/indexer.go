package bussystem

import (
	"sort"

	"github.com/paulmach/osm"
)

// Indexer wraps a BusSystem with the lookups the planner needs: sorted stop
// and route access, node-to-stop resolution and route reachability between
// nodes. It is read-only after construction.
type Indexer struct {
	bus *BusSystem

	sortedStops  []*Stop
	sortedRoutes []*Route
	stopByNode   map[osm.NodeID]*Stop
}

// NewIndexer builds the secondary indices over a loaded bus system.
func NewIndexer(bus *BusSystem) *Indexer {
	idx := &Indexer{
		bus:        bus,
		stopByNode: make(map[osm.NodeID]*Stop),
	}

	idx.sortedStops = make([]*Stop, 0, bus.StopCount())
	for i := 0; i < bus.StopCount(); i++ {
		stop := bus.StopByIndex(i)
		idx.sortedStops = append(idx.sortedStops, stop)

		// Several stops may share a node; the smallest stop id is the
		// canonical representative.
		if cur, ok := idx.stopByNode[stop.NodeID]; !ok || stop.ID < cur.ID {
			idx.stopByNode[stop.NodeID] = stop
		}
	}
	sort.Slice(idx.sortedStops, func(i, j int) bool {
		return idx.sortedStops[i].ID < idx.sortedStops[j].ID
	})

	idx.sortedRoutes = make([]*Route, 0, bus.RouteCount())
	for i := 0; i < bus.RouteCount(); i++ {
		idx.sortedRoutes = append(idx.sortedRoutes, bus.RouteByIndex(i))
	}
	sort.Slice(idx.sortedRoutes, func(i, j int) bool {
		return idx.sortedRoutes[i].Name < idx.sortedRoutes[j].Name
	})

	return idx
}

// StopCount returns the wrapped system's stop count.
func (idx *Indexer) StopCount() int { return idx.bus.StopCount() }

// RouteCount returns the wrapped system's route count.
func (idx *Indexer) RouteCount() int { return idx.bus.RouteCount() }

// SortedStopByIndex returns the i-th stop in ascending id order, or nil out
// of range.
func (idx *Indexer) SortedStopByIndex(i int) *Stop {
	if i < 0 || i >= len(idx.sortedStops) {
		return nil
	}
	return idx.sortedStops[i]
}

// SortedRouteByIndex returns the i-th route in ascending name order, or nil
// out of range.
func (idx *Indexer) SortedRouteByIndex(i int) *Route {
	if i < 0 || i >= len(idx.sortedRoutes) {
		return nil
	}
	return idx.sortedRoutes[i]
}

// StopByID returns the stop with the given id, or nil if unknown.
func (idx *Indexer) StopByID(id StopID) *Stop { return idx.bus.StopByID(id) }

// RouteByName returns the route with the given name, or nil if unknown.
func (idx *Indexer) RouteByName(name string) *Route { return idx.bus.RouteByName(name) }

// StopByNodeID returns the canonical stop at a node (the one with the
// smallest stop id), or nil when no stop sits on the node.
func (idx *Indexer) StopByNodeID(id osm.NodeID) *Stop { return idx.stopByNode[id] }

// routeVisits reports whether the route serves a stop on node src strictly
// before a stop on node dst.
func (idx *Indexer) routeVisits(route *Route, src, dst osm.NodeID) bool {
	srcSeen := false
	for _, sid := range route.Stops {
		stop := idx.bus.StopByID(sid)
		if stop == nil {
			continue
		}
		if srcSeen && stop.NodeID == dst {
			return true
		}
		if stop.NodeID == src {
			srcSeen = true
		}
	}
	return false
}

// RoutesByNodeIDs returns every route that visits a stop on src strictly
// before a stop on dst, in ascending name order. Both nodes must map to
// known stops.
func (idx *Indexer) RoutesByNodeIDs(src, dst osm.NodeID) []*Route {
	if idx.stopByNode[src] == nil || idx.stopByNode[dst] == nil {
		return nil
	}

	var routes []*Route
	for _, route := range idx.sortedRoutes {
		if idx.routeVisits(route, src, dst) {
			routes = append(routes, route)
		}
	}
	return routes
}

// RouteBetweenNodeIDs reports whether any single route visits src before
// dst.
func (idx *Indexer) RouteBetweenNodeIDs(src, dst osm.NodeID) bool {
	return len(idx.RoutesByNodeIDs(src, dst)) > 0
}
