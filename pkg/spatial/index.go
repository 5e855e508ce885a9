// Package spatial indexes street map nodes in an r-tree for nearest-node
// coordinate queries.
package spatial

import (
	"github.com/paulmach/osm"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"

	"trip_planner/pkg/geo"
	"trip_planner/pkg/streetmap"
)

// maxSnapMiles bounds how far a query point may sit from the street grid.
const maxSnapMiles = 0.5

// searchRadii are the expanding box half-widths in degrees tried per query.
// 0.005 degrees is roughly a third of a mile.
var searchRadii = [...]float64{0.005, 0.02, 0.08}

// NodeIndex answers nearest-node queries over a loaded street map.
type NodeIndex struct {
	tr  rtree.RTreeG[osm.NodeID]
	loc map[osm.NodeID]geo.Location
}

// NewNodeIndex builds the index over every node in the street map.
func NewNodeIndex(sm *streetmap.StreetMap, log *zap.Logger) *NodeIndex {
	if log == nil {
		log = zap.NewNop()
	}

	idx := &NodeIndex{loc: make(map[osm.NodeID]geo.Location, sm.NodeCount())}
	for i := 0; i < sm.NodeCount(); i++ {
		n := sm.NodeByIndex(i)
		pt := [2]float64{n.Lon, n.Lat}
		idx.tr.Insert(pt, pt, n.ID)
		idx.loc[n.ID] = streetmap.NodeLocation(n)
	}

	log.Info("spatial index built", zap.Int("nodes", sm.NodeCount()))
	return idx
}

// NearestNode returns the node closest to the query point, expanding the
// search box until a hit. It reports false when no node lies within the
// snap limit.
func (idx *NodeIndex) NearestNode(lat, lon float64) (osm.NodeID, bool) {
	query := geo.NewLocation(lat, lon)

	for _, radius := range searchRadii {
		best := osm.NodeID(0)
		bestDist := maxSnapMiles
		found := false

		min := [2]float64{lon - radius, lat - radius}
		max := [2]float64{lon + radius, lat + radius}
		idx.tr.Search(min, max, func(_, _ [2]float64, id osm.NodeID) bool {
			if d := geo.HaversineMiles(query, idx.loc[id]); d <= bestDist {
				best, bestDist, found = id, d, true
			}
			return true
		})

		if found {
			return best, true
		}
	}
	return 0, false
}
