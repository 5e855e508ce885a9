// Package export renders computed routes as GeoJSON for map overlays.
package export

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"trip_planner/pkg/planner"
)

// NodePath renders a shortest-path node sequence as a FeatureCollection
// with a single LineString carrying the total distance.
func NodePath(p *planner.Planner, nodes []osm.NodeID, miles float64) (*geojson.FeatureCollection, error) {
	if len(nodes) == 0 {
		return nil, errors.New("empty node path")
	}

	coords := make([][]float64, 0, len(nodes))
	for _, id := range nodes {
		n := p.NodeByID(id)
		if n == nil {
			return nil, errors.Errorf("unknown node %d in path", id)
		}
		coords = append(coords, []float64{n.Lon, n.Lat})
	}

	feature := geojson.NewLineStringFeature(coords)
	feature.SetProperty("distance_miles", miles)

	fc := geojson.NewFeatureCollection()
	fc.AddFeature(feature)
	return fc, nil
}

// Itinerary renders a fastest-path trip as one LineString per leg, tagged
// with its mode and, where a single way joins the endpoints, the street
// name and posted speed.
func Itinerary(p *planner.Planner, steps []planner.TripStep, hours float64) (*geojson.FeatureCollection, error) {
	if len(steps) == 0 {
		return nil, errors.New("empty trip")
	}

	fc := geojson.NewFeatureCollection()

	prev := p.NodeByID(steps[0].NodeID)
	if prev == nil {
		return nil, errors.Errorf("unknown node %d in trip", steps[0].NodeID)
	}

	for _, step := range steps[1:] {
		cur := p.NodeByID(step.NodeID)
		if cur == nil {
			return nil, errors.Errorf("unknown node %d in trip", step.NodeID)
		}

		feature := geojson.NewLineStringFeature([][]float64{
			{prev.Lon, prev.Lat},
			{cur.Lon, cur.Lat},
		})
		feature.SetProperty("mode", step.Mode.String())
		if name, ok := p.StreetName(prev.ID, cur.ID); ok {
			feature.SetProperty("street", name)
			if w := p.WayBetween(prev.ID, cur.ID); w != nil {
				feature.SetProperty("maxspeed_mph", p.RoadSpeedMPH(w))
			}
		}
		fc.AddFeature(feature)
		prev = cur
	}

	if len(fc.Features) == 0 {
		// A single-step trip still yields a point of departure.
		feature := geojson.NewPointFeature([]float64{prev.Lon, prev.Lat})
		feature.SetProperty("mode", steps[0].Mode.String())
		fc.AddFeature(feature)
	}

	fc.Features[0].SetProperty("total_hours", hours)
	return fc, nil
}
