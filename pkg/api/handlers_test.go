package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip_planner/pkg/bussystem"
	"trip_planner/pkg/dsv"
	"trip_planner/pkg/planner"
	"trip_planner/pkg/spatial"
	"trip_planner/pkg/streetmap"
)

const apiXML = `<osm>
	<node id="1" lat="0" lon="0"/>
	<node id="2" lat="0" lon="0.014469"/>
	<node id="3" lat="0" lon="0.028938"/>
	<node id="9" lat="5" lon="5"/>
	<way id="10"><nd ref="1"/><nd ref="2"/><nd ref="3"/><tag k="name" v="Long Road"/></way>
</osm>`

const apiStops = "stop_id,node_id\n7,2\n8,3\n"
const apiRoutes = "route,stop_id\nBlue,7\nBlue,8\n"

func buildServer(t *testing.T) http.Handler {
	t.Helper()

	sm, err := streetmap.Load(strings.NewReader(apiXML))
	require.NoError(t, err)
	bs, err := bussystem.Load(
		dsv.NewReader(strings.NewReader(apiStops), ','),
		dsv.NewReader(strings.NewReader(apiRoutes), ','),
	)
	require.NoError(t, err)

	p := planner.New(planner.DefaultConfig(sm, bs), nil)
	handlers := NewHandlers(p, spatial.NewNodeIndex(sm, nil))
	return NewServer(DefaultServerConfig(0), handlers, nil).Handler
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStats(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Nodes)
	assert.Equal(t, 2, resp.BusStops)
	assert.Equal(t, 1, resp.BusRoutes)
}

func TestShortestEndpoint(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/shortest", `{"src":1,"dst":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ShortestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 2.0, resp.DistanceMiles, 0.01)
	assert.Equal(t, []int64{1, 2, 3}, resp.Nodes)
	assert.NotEmpty(t, resp.Polyline)
}

func TestShortestUnknownNode(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/shortest", `{"src":1,"dst":404}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unknown_node", resp.Error)
	assert.Equal(t, "dst", resp.Field)
}

func TestShortestNoRoute(t *testing.T) {
	h := buildServer(t)
	// Node 9 exists but is disconnected.
	rec := doJSON(t, h, http.MethodPost, "/api/v1/shortest", `{"src":1,"dst":9}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_route_found", resp.Error)
}

func TestShortestBadBody(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/shortest", `{"src":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFastestEndpoint(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/fastest", `{"src":1,"dst":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FastestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp.Hours, 0.0)
	require.NotEmpty(t, resp.Steps)
	assert.Equal(t, "Bike", resp.Steps[0].Mode)
	assert.Equal(t, "Bus", resp.Steps[len(resp.Steps)-1].Mode)
	assert.Contains(t, resp.Description[0], "Start at ")
	assert.NotEmpty(t, resp.Polyline)
}

func TestFastestGeoJSON(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/fastest?format=geojson", `{"src":1,"dst":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FeatureCollection"`)
	assert.Contains(t, rec.Body.String(), `"mode"`)
}

func TestRouteByCoordinates(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/route",
		`{"start":{"lat":0.0001,"lon":0},"end":{"lat":0,"lon":0.0289},"metric":"time"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.SrcNode)
	assert.Equal(t, int64(3), resp.DstNode)
	require.NotNil(t, resp.Fastest)
	assert.Nil(t, resp.Shortest)
}

func TestRouteDefaultsToDistance(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/route",
		`{"start":{"lat":0,"lon":0},"end":{"lat":0,"lon":0.014469}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Shortest)
	assert.InDelta(t, 1.0, resp.Shortest.DistanceMiles, 0.01)
}

func TestRoutePointTooFar(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/route",
		`{"start":{"lat":45,"lon":45},"end":{"lat":0,"lon":0}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "point_too_far_from_road", resp.Error)
	assert.Equal(t, "start", resp.Field)
}

func TestRouteInvalidCoordinates(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/route",
		`{"start":{"lat":95,"lon":0},"end":{"lat":0,"lon":0}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_coordinates", resp.Error)
}

func TestRouteInvalidMetric(t *testing.T) {
	h := buildServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/route",
		`{"start":{"lat":0,"lon":0},"end":{"lat":0,"lon":0.014469},"metric":"teleport"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
