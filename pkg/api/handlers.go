package api

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/paulmach/osm"
	"github.com/twpayne/go-polyline"

	"trip_planner/pkg/export"
	"trip_planner/pkg/planner"
	"trip_planner/pkg/spatial"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	planner *planner.Planner
	index   *spatial.NodeIndex
}

// NewHandlers creates handlers over a built planner and spatial index.
func NewHandlers(p *planner.Planner, index *spatial.NodeIndex) *Handlers {
	return &Handlers{planner: p, index: index}
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	idx := h.planner.BusIndexer()
	writeJSON(w, http.StatusOK, StatsResponse{
		Nodes:     h.planner.NodeCount(),
		BusStops:  idx.StopCount(),
		BusRoutes: idx.RouteCount(),
	})
}

// HandleShortest handles POST /api/v1/shortest.
func (h *Handlers) HandleShortest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req NodePairRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	resp, ok := h.shortest(w, osm.NodeID(req.Src), osm.NodeID(req.Dst))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleFastest handles POST /api/v1/fastest. With ?format=geojson the
// response is a GeoJSON FeatureCollection of the trip legs.
func (h *Handlers) HandleFastest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req NodePairRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	src, dst := osm.NodeID(req.Src), osm.NodeID(req.Dst)
	if !h.checkNodes(w, src, dst) {
		return
	}

	hours, steps := h.planner.FindFastestPath(src, dst)
	if hours < 0 {
		writeError(w, http.StatusNotFound, "no_route_found", "")
		return
	}

	if r.URL.Query().Get("format") == "geojson" {
		fc, err := export.Itinerary(h.planner, steps, hours)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}
		writeJSON(w, http.StatusOK, fc)
		return
	}

	resp, ok := h.fastestResponse(w, hours, steps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRoute handles POST /api/v1/route, locating both endpoints by
// coordinate before planning.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if !validCoord(req.Start) {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if !validCoord(req.End) {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	src, ok := h.index.NearestNode(req.Start.Lat, req.Start.Lon)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "start")
		return
	}
	dst, ok := h.index.NearestNode(req.End.Lat, req.End.Lon)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "end")
		return
	}

	resp := RouteResponse{SrcNode: int64(src), DstNode: int64(dst)}

	switch req.Metric {
	case "", "distance":
		shortest, ok := h.shortest(w, src, dst)
		if !ok {
			return
		}
		resp.Shortest = &shortest
	case "time":
		hours, steps := h.planner.FindFastestPath(src, dst)
		if hours < 0 {
			writeError(w, http.StatusNotFound, "no_route_found", "")
			return
		}
		fastest, ok := h.fastestResponse(w, hours, steps)
		if !ok {
			return
		}
		resp.Fastest = &fastest
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "metric")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// shortest runs the distance query and writes the error response itself on
// failure.
func (h *Handlers) shortest(w http.ResponseWriter, src, dst osm.NodeID) (ShortestResponse, bool) {
	if !h.checkNodes(w, src, dst) {
		return ShortestResponse{}, false
	}

	miles, nodes := h.planner.FindShortestPath(src, dst)
	if miles < 0 {
		writeError(w, http.StatusNotFound, "no_route_found", "")
		return ShortestResponse{}, false
	}

	ids := make([]int64, len(nodes))
	coords := make([][]float64, len(nodes))
	for i, id := range nodes {
		ids[i] = int64(id)
		n := h.planner.NodeByID(id)
		coords[i] = []float64{n.Lat, n.Lon}
	}

	return ShortestResponse{
		DistanceMiles: miles,
		Nodes:         ids,
		Polyline:      string(polyline.EncodeCoords(coords)),
	}, true
}

func (h *Handlers) fastestResponse(w http.ResponseWriter, hours float64, steps []planner.TripStep) (FastestResponse, bool) {
	desc, err := h.planner.GetPathDescription(steps)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return FastestResponse{}, false
	}

	outSteps := make([]StepJSON, len(steps))
	coords := make([][]float64, len(steps))
	for i, step := range steps {
		outSteps[i] = StepJSON{Mode: step.Mode.String(), NodeID: int64(step.NodeID)}
		n := h.planner.NodeByID(step.NodeID)
		coords[i] = []float64{n.Lat, n.Lon}
	}

	return FastestResponse{
		Hours:       hours,
		Steps:       outSteps,
		Description: desc,
		Polyline:    string(polyline.EncodeCoords(coords)),
	}, true
}

// checkNodes maps unknown node ids to a 404 before planning.
func (h *Handlers) checkNodes(w http.ResponseWriter, src, dst osm.NodeID) bool {
	if h.planner.NodeByID(src) == nil {
		writeError(w, http.StatusNotFound, "unknown_node", "src")
		return false
	}
	if h.planner.NodeByID(dst) == nil {
		writeError(w, http.StatusNotFound, "unknown_node", "dst")
		return false
	}
	return true
}

// validCoord accepts finite in-range coordinates only.
func validCoord(ll LatLngJSON) bool {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lon, 0) {
		return false
	}
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lon >= -180 && ll.Lon <= 180
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
