// Package bussystem loads a bus network from delimited stop and route files
// and builds the secondary indices the planner queries.
package bussystem

import (
	"io"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"trip_planner/pkg/dsv"
	"trip_planner/pkg/strutil"
)

// StopID identifies a bus stop.
type StopID uint64

// Stop is a boardable bus stop co-located with a street map node.
type Stop struct {
	ID     StopID
	NodeID osm.NodeID
}

// Route is a named ordered sequence of stops served by a bus line.
type Route struct {
	Name  string
	Stops []StopID
}

// StopCount returns the number of stops on the route.
func (r *Route) StopCount() int { return len(r.Stops) }

// BusSystem holds the loaded stops and routes. Both keep input order; id and
// name lookups are O(1).
type BusSystem struct {
	stops       []*Stop
	routes      []*Route
	stopByID    map[StopID]*Stop
	routeByName map[string]*Route

	dropped int
}

// Load reads the stops and routes streams. Each stream's header row is
// skipped; rows with fewer than two fields or unparseable integers are
// dropped individually.
func Load(stopSrc, routeSrc *dsv.Reader) (*BusSystem, error) {
	bs := &BusSystem{
		stopByID:    make(map[StopID]*Stop),
		routeByName: make(map[string]*Route),
	}

	if err := bs.loadStops(stopSrc); err != nil {
		return bs, errors.Wrap(err, "loading stops")
	}
	if err := bs.loadRoutes(routeSrc); err != nil {
		return bs, errors.Wrap(err, "loading routes")
	}
	return bs, nil
}

func (bs *BusSystem) loadStops(src *dsv.Reader) error {
	header := true
	for {
		row, err := src.ReadRow()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header {
			header = false
			continue
		}
		if len(row) < 2 {
			bs.dropped++
			continue
		}

		id, err := strconv.ParseUint(strutil.Strip(row[0]), 10, 64)
		if err != nil {
			bs.dropped++
			continue
		}
		nodeID, err := strconv.ParseInt(strutil.Strip(row[1]), 10, 64)
		if err != nil {
			bs.dropped++
			continue
		}

		stop := &Stop{ID: StopID(id), NodeID: osm.NodeID(nodeID)}
		if _, ok := bs.stopByID[stop.ID]; ok {
			bs.dropped++
			continue
		}
		bs.stops = append(bs.stops, stop)
		bs.stopByID[stop.ID] = stop
	}
}

func (bs *BusSystem) loadRoutes(src *dsv.Reader) error {
	header := true
	for {
		row, err := src.ReadRow()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header {
			header = false
			continue
		}
		if len(row) < 2 {
			bs.dropped++
			continue
		}

		name := row[0]
		id, err := strconv.ParseUint(strutil.Strip(row[1]), 10, 64)
		if err != nil {
			bs.dropped++
			continue
		}

		route, ok := bs.routeByName[name]
		if !ok {
			// First appearance fixes the route's position.
			route = &Route{Name: name}
			bs.routeByName[name] = route
			bs.routes = append(bs.routes, route)
		}
		route.Stops = append(route.Stops, StopID(id))
	}
}

// StopCount returns the number of loaded stops.
func (bs *BusSystem) StopCount() int { return len(bs.stops) }

// RouteCount returns the number of loaded routes.
func (bs *BusSystem) RouteCount() int { return len(bs.routes) }

// StopByIndex returns the i-th stop in input order, or nil out of range.
func (bs *BusSystem) StopByIndex(i int) *Stop {
	if i < 0 || i >= len(bs.stops) {
		return nil
	}
	return bs.stops[i]
}

// StopByID returns the stop with the given id, or nil if unknown.
func (bs *BusSystem) StopByID(id StopID) *Stop { return bs.stopByID[id] }

// RouteByIndex returns the i-th route in first-appearance order, or nil out
// of range.
func (bs *BusSystem) RouteByIndex(i int) *Route {
	if i < 0 || i >= len(bs.routes) {
		return nil
	}
	return bs.routes[i]
}

// RouteByName returns the route with the given name, or nil if unknown.
func (bs *BusSystem) RouteByName(name string) *Route { return bs.routeByName[name] }

// DroppedRows reports how many malformed or duplicate rows the load skipped.
func (bs *BusSystem) DroppedRows() int { return bs.dropped }
