package planner

import (
	"fmt"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"trip_planner/pkg/geo"
	"trip_planner/pkg/streetmap"
)

// ErrEmptyPath is returned when a description is requested for no steps.
var ErrEmptyPath = errors.New("empty path")

// WayBetween returns a way containing the two nodes as a consecutive pair,
// in either order, or nil when no single segment joins them.
func (p *Planner) WayBetween(u, v osm.NodeID) *osm.Way {
	return p.segWays[newSegKey(u, v)]
}

// StreetName resolves the display name for the segment joining two nodes.
// The second result is false when no way segment joins them directly; a
// joining way without a name reads "unnamed street".
func (p *Planner) StreetName(u, v osm.NodeID) (string, bool) {
	w := p.WayBetween(u, v)
	if w == nil {
		return "", false
	}
	if name := w.Tags.Find("name"); name != "" {
		return name, true
	}
	return "unnamed street", true
}

// GetPathDescription renders a trip as natural-language lines: a Start
// line, one transit line per step after the first, and an End line.
func (p *Planner) GetPathDescription(steps []TripStep) ([]string, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyPath
	}

	first := p.NodeByID(steps[0].NodeID)
	if first == nil {
		return nil, errors.Errorf("unknown node %d in path", steps[0].NodeID)
	}

	lines := make([]string, 0, len(steps)+1)
	lines = append(lines, "Start at "+geo.FormatDMS(streetmap.NodeLocation(first)))

	prev := first
	for _, step := range steps[1:] {
		cur := p.NodeByID(step.NodeID)
		if cur == nil {
			return nil, errors.Errorf("unknown node %d in path", step.NodeID)
		}

		line, ok := p.busStepLine(prev, cur, step.Mode)
		if !ok {
			line = p.streetStepLine(prev, cur, step.Mode)
		}
		lines = append(lines, line)
		prev = cur
	}

	lines = append(lines, "End at "+geo.FormatDMS(streetmap.NodeLocation(prev)))
	return lines, nil
}

// busStepLine renders a bus boarding, provided both endpoints are stops on
// a shared route in order; otherwise the caller falls back to the street
// template.
func (p *Planner) busStepLine(prev, cur *osm.Node, mode Mode) (string, bool) {
	if mode != ModeBus {
		return "", false
	}

	routes := p.busIndex.RoutesByNodeIDs(prev.ID, cur.ID)
	if len(routes) == 0 {
		return "", false
	}
	srcStop := p.busIndex.StopByNodeID(prev.ID)
	dstStop := p.busIndex.StopByNodeID(cur.ID)
	if srcStop == nil || dstStop == nil {
		return "", false
	}

	return fmt.Sprintf("Take Bus %s from stop %d to stop %d",
		routes[0].Name, srcStop.ID, dstStop.ID), true
}

// streetStepLine renders a walking or biking leg with its compass heading
// and great-circle length.
func (p *Planner) streetStepLine(prev, cur *osm.Node, mode Mode) string {
	from := streetmap.NodeLocation(prev)
	to := streetmap.NodeLocation(cur)

	dir := geo.BearingToDirection(geo.Bearing(from, to))
	dist := geo.HaversineMiles(from, to)

	verb := mode.String()
	if mode == ModeBus {
		// A bus step without a shared route degrades to walking.
		verb = ModeWalk.String()
	}

	if name, ok := p.StreetName(prev.ID, cur.ID); ok {
		return fmt.Sprintf("%s %s along %s for %.1f mi", verb, dir, name, dist)
	}
	return fmt.Sprintf("%s %s toward End for %.1f mi", verb, dir, dist)
}
