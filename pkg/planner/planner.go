// Package planner layers walking, biking and bus travel over a street map
// and answers shortest-distance and fastest-time route queries, including a
// mode-annotated itinerary with turn-by-turn text.
package planner

import (
	"math"
	"sort"
	"strconv"

	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"trip_planner/pkg/bussystem"
	"trip_planner/pkg/geo"
	"trip_planner/pkg/router"
	"trip_planner/pkg/streetmap"
)

// NoPathExists is the cost returned when no route connects the endpoints or
// an endpoint is unknown.
const NoPathExists = router.NoPathExists

// Mode is a means of travel along a trip step.
type Mode int

const (
	ModeWalk Mode = iota
	ModeBike
	ModeBus
)

// String returns the mode name as used in itineraries and saved paths.
func (m Mode) String() string {
	switch m {
	case ModeBike:
		return "Bike"
	case ModeBus:
		return "Bus"
	default:
		return "Walk"
	}
}

// TripStep marks the node reached while travelling in a mode. Consecutive
// same-mode hops are coalesced, so each step is a mode boundary or the
// final destination.
type TripStep struct {
	Mode   Mode
	NodeID osm.NodeID
}

// Config carries the data and tuning the planner needs. Speeds are in miles
// per hour; BusStopTimeSec is the dwell in seconds added to every bus hop
// between consecutive stops.
type Config struct {
	StreetMap       *streetmap.StreetMap
	BusSystem       *bussystem.BusSystem
	WalkSpeedMPH    float64
	BikeSpeedMPH    float64
	DefaultSpeedMPH float64
	BusStopTimeSec  float64
}

// DefaultConfig returns the stock speed settings: walk 3 mph, bike 8 mph,
// roads 25 mph, 30 s bus dwell.
func DefaultConfig(sm *streetmap.StreetMap, bs *bussystem.BusSystem) Config {
	return Config{
		StreetMap:       sm,
		BusSystem:       bs,
		WalkSpeedMPH:    3,
		BikeSpeedMPH:    8,
		DefaultSpeedMPH: 25,
		BusStopTimeSec:  30,
	}
}

// busLeg is one directed bus hop out of a node.
type busLeg struct {
	route string
	dst   osm.NodeID
}

// segKey identifies an unordered node pair on a way.
type segKey struct {
	a, b osm.NodeID
}

func newSegKey(u, v osm.NodeID) segKey {
	if v < u {
		u, v = v, u
	}
	return segKey{a: u, b: v}
}

// Planner owns the two routing graphs built from the configuration. It is
// immutable after New; queries touch only per-call state and may run
// concurrently.
type Planner struct {
	cfg Config

	sortedNodes []*osm.Node
	nodeIndex   map[osm.NodeID]int // node id -> vertex id in both routers

	distRouter *router.Router[osm.NodeID]
	timeRouter *router.Router[osm.NodeID]

	busIndex *bussystem.Indexer
	busAdj   map[osm.NodeID][]busLeg

	segWays map[segKey]*osm.Way
}

// New builds the distance and time routers from the configured street map
// and bus system. Construction is one-shot; the planner is then read-only.
func New(cfg Config, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}

	p := &Planner{
		cfg:        cfg,
		nodeIndex:  make(map[osm.NodeID]int),
		distRouter: router.New[osm.NodeID](),
		timeRouter: router.New[osm.NodeID](),
		busIndex:   bussystem.NewIndexer(cfg.BusSystem),
		busAdj:     make(map[osm.NodeID][]busLeg),
		segWays:    make(map[segKey]*osm.Way),
	}

	p.buildVertices()
	p.buildBusAdjacency()
	p.buildStreetEdges()
	p.buildBusEdges()

	log.Info("planner ready",
		zap.Int("nodes", len(p.sortedNodes)),
		zap.Int("distance_edges", p.distRouter.EdgeCount()),
		zap.Int("time_edges", p.timeRouter.EdgeCount()),
		zap.Int("bus_stops", cfg.BusSystem.StopCount()),
		zap.Int("bus_routes", cfg.BusSystem.RouteCount()))

	return p
}

// buildVertices sorts the nodes by id and registers one vertex per node in
// each router. Vertex ids equal sorted positions, for both routers.
func (p *Planner) buildVertices() {
	sm := p.cfg.StreetMap
	p.sortedNodes = make([]*osm.Node, 0, sm.NodeCount())
	for i := 0; i < sm.NodeCount(); i++ {
		p.sortedNodes = append(p.sortedNodes, sm.NodeByIndex(i))
	}
	sort.Slice(p.sortedNodes, func(i, j int) bool {
		return p.sortedNodes[i].ID < p.sortedNodes[j].ID
	})

	for i, n := range p.sortedNodes {
		p.nodeIndex[n.ID] = i
		p.distRouter.AddVertex(n.ID)
		p.timeRouter.AddVertex(n.ID)
	}
}

// buildBusAdjacency records one leg per (route, next node) for every
// consecutive stop pair on every route, deduplicated and ordered.
func (p *Planner) buildBusAdjacency() {
	bs := p.cfg.BusSystem

	type legKey struct {
		route string
		dst   osm.NodeID
	}
	seen := make(map[osm.NodeID]map[legKey]struct{})

	for r := 0; r < bs.RouteCount(); r++ {
		route := bs.RouteByIndex(r)
		for i := 0; i+1 < route.StopCount(); i++ {
			cur := bs.StopByID(route.Stops[i])
			next := bs.StopByID(route.Stops[i+1])
			if cur == nil || next == nil {
				continue
			}

			key := legKey{route: route.Name, dst: next.NodeID}
			if seen[cur.NodeID] == nil {
				seen[cur.NodeID] = make(map[legKey]struct{})
			}
			if _, dup := seen[cur.NodeID][key]; dup {
				continue
			}
			seen[cur.NodeID][key] = struct{}{}
			p.busAdj[cur.NodeID] = append(p.busAdj[cur.NodeID], busLeg{route: route.Name, dst: next.NodeID})
		}
	}

	for node := range p.busAdj {
		legs := p.busAdj[node]
		sort.Slice(legs, func(i, j int) bool {
			if legs[i].route != legs[j].route {
				return legs[i].route < legs[j].route
			}
			return legs[i].dst < legs[j].dst
		})
	}
}

// oneway reports whether a way is directional.
func oneway(w *osm.Way) bool {
	switch w.Tags.Find("oneway") {
	case "yes", "true", "1":
		return true
	}
	return false
}

// RoadSpeedMPH reads a way's maxspeed attribute as a decimal number,
// stripping any trailing unit token, and falls back to the configured
// default road speed on absence or parse failure.
func (p *Planner) RoadSpeedMPH(w *osm.Way) float64 {
	raw := w.Tags.Find("maxspeed")
	if raw == "" {
		return p.cfg.DefaultSpeedMPH
	}
	// "25 mph" keeps only the number.
	for i := 0; i < len(raw); i++ {
		if raw[i] == ' ' || raw[i] == '\t' {
			raw = raw[:i]
			break
		}
	}
	speed, err := strconv.ParseFloat(raw, 64)
	if err != nil || speed <= 0 {
		return p.cfg.DefaultSpeedMPH
	}
	return speed
}

// relaxTime lowers the time-router weight for (src,dst) to w if w is an
// improvement, so each ordered pair ends at the minimum applicable mode
// time.
func (p *Planner) relaxTime(src, dst int, w float64) {
	if cur, ok := p.timeRouter.EdgeWeight(src, dst); ok && cur <= w {
		return
	}
	p.timeRouter.AddEdge(src, dst, w, false)
}

// buildStreetEdges walks every way twice, first the multi-segment ways and
// then the dedicated two-node ways, so a direct way definition is the
// canonical one for its endpoints.
func (p *Planner) buildStreetEdges() {
	sm := p.cfg.StreetMap
	for i := 0; i < sm.WayCount(); i++ {
		if w := sm.WayByIndex(i); len(w.Nodes) > 2 {
			p.addWayEdges(w)
		}
	}
	for i := 0; i < sm.WayCount(); i++ {
		if w := sm.WayByIndex(i); len(w.Nodes) == 2 {
			p.addWayEdges(w)
		}
	}
}

func (p *Planner) addWayEdges(w *osm.Way) {
	sm := p.cfg.StreetMap
	directional := oneway(w)

	for i := 0; i+1 < len(w.Nodes); i++ {
		srcNode := sm.NodeByID(w.Nodes[i].ID)
		dstNode := sm.NodeByID(w.Nodes[i+1].ID)
		if srcNode == nil || dstNode == nil {
			continue
		}

		d := geo.HaversineMiles(streetmap.NodeLocation(srcNode), streetmap.NodeLocation(dstNode))
		if d <= 0 {
			continue
		}

		if key := newSegKey(srcNode.ID, dstNode.ID); p.segWays[key] == nil || len(w.Nodes) == 2 {
			p.segWays[key] = w
		}

		src := p.nodeIndex[srcNode.ID]
		dst := p.nodeIndex[dstNode.ID]

		p.distRouter.AddEdge(src, dst, d, !directional)

		walk := d / p.cfg.WalkSpeedMPH
		bike := d / p.cfg.BikeSpeedMPH

		// Walking ignores oneway; biking honours it.
		p.relaxTime(src, dst, walk)
		p.relaxTime(dst, src, walk)
		p.relaxTime(src, dst, bike)
		if !directional {
			p.relaxTime(dst, src, bike)
		}
	}
}

// busTime is the hours a bus needs between two nodes: road time at the
// default speed plus the per-stop dwell.
func (p *Planner) busTime(d float64) float64 {
	return d/p.cfg.DefaultSpeedMPH + p.cfg.BusStopTimeSec/3600
}

// buildBusEdges adds the bus legs to the time router only.
func (p *Planner) buildBusEdges() {
	sm := p.cfg.StreetMap
	for _, node := range p.sortedNodes {
		for _, leg := range p.busAdj[node.ID] {
			dstNode := sm.NodeByID(leg.dst)
			if dstNode == nil {
				continue
			}
			d := geo.HaversineMiles(streetmap.NodeLocation(node), streetmap.NodeLocation(dstNode))
			if d <= 0 {
				continue
			}
			p.relaxTime(p.nodeIndex[node.ID], p.nodeIndex[leg.dst], p.busTime(d))
		}
	}
}

// NodeCount returns the number of street map nodes.
func (p *Planner) NodeCount() int { return len(p.sortedNodes) }

// SortedNodeByIndex returns the i-th node in ascending id order, or nil out
// of range.
func (p *Planner) SortedNodeByIndex(i int) *osm.Node {
	if i < 0 || i >= len(p.sortedNodes) {
		return nil
	}
	return p.sortedNodes[i]
}

// NodeByID returns the street map node with the given id, or nil.
func (p *Planner) NodeByID(id osm.NodeID) *osm.Node {
	return p.cfg.StreetMap.NodeByID(id)
}

// BusIndexer exposes the bus system indices built during construction.
func (p *Planner) BusIndexer() *bussystem.Indexer { return p.busIndex }

// FindShortestPath returns the shortest walking distance in miles between
// two nodes and the node sequence realising it. Unknown nodes or a missing
// path yield (NoPathExists, nil).
func (p *Planner) FindShortestPath(src, dst osm.NodeID) (float64, []osm.NodeID) {
	srcV, okSrc := p.nodeIndex[src]
	dstV, okDst := p.nodeIndex[dst]
	if !okSrc || !okDst {
		return NoPathExists, nil
	}

	cost, vertices := p.distRouter.FindShortestPath(srcV, dstV)
	if cost < 0 {
		return NoPathExists, nil
	}

	path := make([]osm.NodeID, len(vertices))
	for i, v := range vertices {
		path[i] = p.sortedNodes[v].ID
	}
	return cost, path
}

// FindFastestPath returns the fastest multimodal travel time in hours
// between two nodes and the coalesced trip steps. src == dst yields a
// single Walk step at the origin.
func (p *Planner) FindFastestPath(src, dst osm.NodeID) (float64, []TripStep) {
	srcV, okSrc := p.nodeIndex[src]
	dstV, okDst := p.nodeIndex[dst]
	if !okSrc || !okDst {
		return NoPathExists, nil
	}
	if src == dst {
		return 0, []TripStep{{Mode: ModeWalk, NodeID: src}}
	}

	cost, vertices := p.timeRouter.FindShortestPath(srcV, dstV)
	if cost < 0 || len(vertices) < 2 {
		return NoPathExists, nil
	}

	nodes := make([]osm.NodeID, len(vertices))
	for i, v := range vertices {
		nodes[i] = p.sortedNodes[v].ID
	}

	steps := []TripStep{{Mode: p.edgeMode(nodes[0], nodes[1]), NodeID: nodes[0]}}
	for i := 1; i < len(nodes); i++ {
		mode := p.edgeMode(nodes[i-1], nodes[i])
		// The opening step keeps the departure node; coalescing starts
		// with the first travel step.
		if len(steps) > 1 && steps[len(steps)-1].Mode == mode {
			steps[len(steps)-1].NodeID = nodes[i]
		} else {
			steps = append(steps, TripStep{Mode: mode, NodeID: nodes[i]})
		}
	}

	return cost, steps
}

// modeTimeEpsilon absorbs float noise when matching a mode time against the
// stored edge weight.
const modeTimeEpsilon = 1e-9

// edgeMode picks the travel mode for one hop: the cheapest of walk, bike
// and (between consecutive stops of a route) bus, preferring Bus over Bike
// over Walk on ties.
func (p *Planner) edgeMode(src, dst osm.NodeID) Mode {
	srcNode := p.cfg.StreetMap.NodeByID(src)
	dstNode := p.cfg.StreetMap.NodeByID(dst)
	if srcNode == nil || dstNode == nil {
		return ModeWalk
	}

	d := geo.HaversineMiles(streetmap.NodeLocation(srcNode), streetmap.NodeLocation(dstNode))
	walk := d / p.cfg.WalkSpeedMPH
	bike := d / p.cfg.BikeSpeedMPH

	bus := math.Inf(1)
	if p.busLegRoute(src, dst) != "" {
		bus = p.busTime(d)
	}

	// The stored weight is the cheapest mode allowed on this hop; match
	// it so a disallowed mode (bike against a oneway) is never reported.
	if w, ok := p.timeRouter.EdgeWeight(p.nodeIndex[src], p.nodeIndex[dst]); ok {
		switch {
		case math.Abs(bus-w) <= modeTimeEpsilon:
			return ModeBus
		case math.Abs(bike-w) <= modeTimeEpsilon:
			return ModeBike
		default:
			return ModeWalk
		}
	}

	best := math.Min(walk, math.Min(bike, bus))
	switch {
	case bus <= best+modeTimeEpsilon:
		return ModeBus
	case bike <= best+modeTimeEpsilon:
		return ModeBike
	default:
		return ModeWalk
	}
}

// busLegRoute returns the alphabetically first route running a direct leg
// src -> dst, or "" when no bus serves the hop.
func (p *Planner) busLegRoute(src, dst osm.NodeID) string {
	for _, leg := range p.busAdj[src] {
		if leg.dst == dst {
			return leg.route // legs are sorted by route name
		}
	}
	return ""
}
