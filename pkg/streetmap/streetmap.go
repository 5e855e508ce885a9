// Package streetmap loads an OpenStreetMap-style XML document into keyed,
// load-ordered node and way collections. Entities with malformed numeric
// attributes are dropped individually; the rest of the document still loads.
package streetmap

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"

	"trip_planner/pkg/geo"
)

// StreetMap is an in-memory street graph index. Nodes and ways keep their
// load order; id lookups are O(1). A StreetMap is immutable once loaded.
type StreetMap struct {
	nodes    []*osm.Node
	ways     []*osm.Way
	nodeByID map[osm.NodeID]*osm.Node
	wayByID  map[osm.WayID]*osm.Way

	dropped int
}

// Load parses an XML stream of osm/node/way/nd/tag elements. Unrecognised
// elements are ignored. A node or way whose id, lat or lon fails to parse is
// skipped without aborting the load.
func Load(r io.Reader) (*StreetMap, error) {
	sm := &StreetMap{
		nodeByID: make(map[osm.NodeID]*osm.Node),
		wayByID:  make(map[osm.WayID]*osm.Way),
	}

	dec := xml.NewDecoder(r)

	var (
		curNode *osm.Node
		curWay  *osm.Way
		bad     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sm, errors.Wrap(err, "reading street map xml")
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "node":
				curNode, curWay, bad = &osm.Node{}, nil, false
				for _, attr := range el.Attr {
					switch attr.Name.Local {
					case "id":
						id, err := strconv.ParseInt(attr.Value, 10, 64)
						if err != nil {
							bad = true
							continue
						}
						curNode.ID = osm.NodeID(id)
					case "lat":
						v, err := strconv.ParseFloat(attr.Value, 64)
						if err != nil {
							bad = true
							continue
						}
						curNode.Lat = v
					case "lon":
						v, err := strconv.ParseFloat(attr.Value, 64)
						if err != nil {
							bad = true
							continue
						}
						curNode.Lon = v
					default:
						setTag(&curNode.Tags, attr.Name.Local, attr.Value)
					}
				}
			case "way":
				curWay, curNode, bad = &osm.Way{}, nil, false
				for _, attr := range el.Attr {
					switch attr.Name.Local {
					case "id":
						id, err := strconv.ParseInt(attr.Value, 10, 64)
						if err != nil {
							bad = true
							continue
						}
						curWay.ID = osm.WayID(id)
					default:
						setTag(&curWay.Tags, attr.Name.Local, attr.Value)
					}
				}
			case "nd":
				if curWay == nil {
					continue
				}
				for _, attr := range el.Attr {
					if attr.Name.Local != "ref" {
						continue
					}
					ref, err := strconv.ParseInt(attr.Value, 10, 64)
					if err != nil {
						sm.dropped++
						continue
					}
					curWay.Nodes = append(curWay.Nodes, osm.WayNode{ID: osm.NodeID(ref)})
				}
			case "tag":
				var k, v string
				for _, attr := range el.Attr {
					switch attr.Name.Local {
					case "k":
						k = attr.Value
					case "v":
						v = attr.Value
					}
				}
				if k == "" {
					continue
				}
				if curNode != nil {
					setTag(&curNode.Tags, k, v)
				} else if curWay != nil {
					setTag(&curWay.Tags, k, v)
				}
			}

		case xml.EndElement:
			switch el.Name.Local {
			case "node":
				if curNode != nil {
					if bad {
						sm.dropped++
					} else {
						sm.addNode(curNode)
					}
					curNode = nil
				}
			case "way":
				if curWay != nil {
					if bad {
						sm.dropped++
					} else {
						sm.addWay(curWay)
					}
					curWay = nil
				}
			}
		}
	}

	return sm, nil
}

func (sm *StreetMap) addNode(n *osm.Node) {
	if _, ok := sm.nodeByID[n.ID]; ok {
		sm.dropped++
		return
	}
	sm.nodes = append(sm.nodes, n)
	sm.nodeByID[n.ID] = n
}

func (sm *StreetMap) addWay(w *osm.Way) {
	if _, ok := sm.wayByID[w.ID]; ok {
		sm.dropped++
		return
	}
	sm.ways = append(sm.ways, w)
	sm.wayByID[w.ID] = w
}

// setTag inserts or overwrites a key in a tag list, keeping keys unique.
func setTag(tags *osm.Tags, key, value string) {
	for i, t := range *tags {
		if t.Key == key {
			(*tags)[i].Value = value
			return
		}
	}
	*tags = append(*tags, osm.Tag{Key: key, Value: value})
}

// NodeCount returns the number of loaded nodes.
func (sm *StreetMap) NodeCount() int { return len(sm.nodes) }

// WayCount returns the number of loaded ways.
func (sm *StreetMap) WayCount() int { return len(sm.ways) }

// NodeByIndex returns the i-th node in load order, or nil out of range.
func (sm *StreetMap) NodeByIndex(i int) *osm.Node {
	if i < 0 || i >= len(sm.nodes) {
		return nil
	}
	return sm.nodes[i]
}

// NodeByID returns the node with the given id, or nil if unknown.
func (sm *StreetMap) NodeByID(id osm.NodeID) *osm.Node {
	return sm.nodeByID[id]
}

// WayByIndex returns the i-th way in load order, or nil out of range.
func (sm *StreetMap) WayByIndex(i int) *osm.Way {
	if i < 0 || i >= len(sm.ways) {
		return nil
	}
	return sm.ways[i]
}

// WayByID returns the way with the given id, or nil if unknown.
func (sm *StreetMap) WayByID(id osm.WayID) *osm.Way {
	return sm.wayByID[id]
}

// DroppedEntities reports how many malformed or duplicate entities the load
// skipped.
func (sm *StreetMap) DroppedEntities() int { return sm.dropped }

// NodeLocation returns a node's coordinates as a geo.Location.
func NodeLocation(n *osm.Node) geo.Location {
	return geo.NewLocation(n.Lat, n.Lon)
}
