package api

// LatLngJSON represents a lat/lon pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NodePairRequest is the JSON body for POST /api/v1/shortest and
// /api/v1/fastest.
type NodePairRequest struct {
	Src int64 `json:"src"`
	Dst int64 `json:"dst"`
}

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start  LatLngJSON `json:"start"`
	End    LatLngJSON `json:"end"`
	Metric string     `json:"metric,omitempty"` // "distance" (default) or "time"
}

// StepJSON is one leg of a fastest-path trip.
type StepJSON struct {
	Mode   string `json:"mode"`
	NodeID int64  `json:"node_id"`
}

// ShortestResponse is the JSON response for a shortest-path query.
type ShortestResponse struct {
	DistanceMiles float64 `json:"distance_miles"`
	Nodes         []int64 `json:"nodes"`
	Polyline      string  `json:"polyline"`
}

// FastestResponse is the JSON response for a fastest-path query.
type FastestResponse struct {
	Hours       float64    `json:"hours"`
	Steps       []StepJSON `json:"steps"`
	Description []string   `json:"description"`
	Polyline    string     `json:"polyline"`
}

// RouteResponse wraps either query when the endpoints arrive as
// coordinates.
type RouteResponse struct {
	SrcNode  int64             `json:"src_node"`
	DstNode  int64             `json:"dst_node"`
	Shortest *ShortestResponse `json:"shortest,omitempty"`
	Fastest  *FastestResponse  `json:"fastest,omitempty"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	Nodes     int `json:"nodes"`
	BusStops  int `json:"bus_stops"`
	BusRoutes int `json:"bus_routes"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
