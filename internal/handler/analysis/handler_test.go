package analysis

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getaround-ml/pricing-inference/internal/delay"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
	m.Run()
}

const fixtureCSV = `rental_id,car_id,checkin_type,state,delay_at_checkout_in_minutes,previous_ended_rental_id,time_delta_with_previous_rental_in_minutes
1,100,mobile,ended,60,,
2,100,connect,ended,-10,1,30
3,100,mobile,canceled,NaN,2.0,120
4,200,connect,ended,0,,
5,200,connect,ended,900,,
6,200,mobile,ended,15,5.0,600
7,300,connect,canceled,,6.0,10
8,300,mobile,ended,30,,
`

func fixtureRouter(t *testing.T, cache *mapCache) *gin.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "delays.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o644))
	store, err := delay.LoadCSV(path)
	require.NoError(t, err)

	handler := NewHandler(store, nil)
	if cache != nil {
		handler = NewHandler(store, cache)
	}
	router := gin.New()
	group := router.Group("/api/v1/delay")
	group.GET("/summary", handler.Summary)
	group.GET("/overview", handler.Overview)
	group.GET("/threshold", handler.Threshold)
	group.GET("/threshold/sweep", handler.Sweep)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestSummary(t *testing.T) {
	recorder := doGet(fixtureRouter(t, nil), "/api/v1/delay/summary")
	require.Equal(t, http.StatusOK, recorder.Code)

	var summary delay.Summary
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &summary))
	assert.Equal(t, 8, summary.TotalRentals)
	assert.Equal(t, 4, summary.ConnectRentals)
	assert.Equal(t, 2, summary.CanceledRentals)
}

func TestOverview(t *testing.T) {
	recorder := doGet(fixtureRouter(t, nil), "/api/v1/delay/overview")
	require.Equal(t, http.StatusOK, recorder.Code)

	var overview delay.Overview
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &overview))
	assert.Equal(t, 4, overview.ConsecutiveRentals)
	assert.Equal(t, 3, overview.LateReturns)
	assert.Equal(t, 3, overview.ProblemCases)
}

func TestThreshold(t *testing.T) {
	router := fixtureRouter(t, nil)

	recorder := doGet(router, "/api/v1/delay/threshold?minutes=90")
	require.Equal(t, http.StatusOK, recorder.Code)

	var metrics delay.ThresholdMetrics
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &metrics))
	assert.Equal(t, 90.0, metrics.ThresholdMin)
	assert.Equal(t, "all", metrics.Scope, "scope must default to all")
	assert.Equal(t, 2, metrics.BlockedRentals)
	assert.Equal(t, 2, metrics.ProblemsSolved)
}

func TestThreshold_ConnectScope(t *testing.T) {
	recorder := doGet(fixtureRouter(t, nil), "/api/v1/delay/threshold?minutes=90&scope=connect")
	require.Equal(t, http.StatusOK, recorder.Code)

	var metrics delay.ThresholdMetrics
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &metrics))
	assert.Equal(t, "connect", metrics.Scope)
	assert.Equal(t, 4, metrics.TotalRentals)
}

func TestThreshold_BadRequest(t *testing.T) {
	router := fixtureRouter(t, nil)

	for _, path := range []string{
		"/api/v1/delay/threshold?minutes=-5",
		"/api/v1/delay/threshold?minutes=90&scope=mobile",
		"/api/v1/delay/threshold?minutes=abc",
	} {
		recorder := doGet(router, path)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, path)
	}
}

func TestSweep(t *testing.T) {
	recorder := doGet(fixtureRouter(t, nil), "/api/v1/delay/threshold/sweep?from=0&to=60&step=30")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Thresholds []delay.ThresholdMetrics `json:"thresholds"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Thresholds, 3)
	assert.Equal(t, 0.0, body.Thresholds[0].ThresholdMin)
	assert.Equal(t, 60.0, body.Thresholds[2].ThresholdMin)
}

func TestSweep_Defaults(t *testing.T) {
	recorder := doGet(fixtureRouter(t, nil), "/api/v1/delay/threshold/sweep")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Thresholds []delay.ThresholdMetrics `json:"thresholds"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	// 0..300 by 30
	require.Len(t, body.Thresholds, 11)
}

func TestSweep_BadRequest(t *testing.T) {
	recorder := doGet(fixtureRouter(t, nil), "/api/v1/delay/threshold/sweep?from=100&to=50")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

type mapCache struct {
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(key []byte) ([]byte, error) {
	value, ok := c.entries[string(key)]
	if !ok {
		return nil, assert.AnError
	}
	return value, nil
}

func (c *mapCache) Set(key, value []byte) error {
	c.sets++
	c.entries[string(key)] = value
	return nil
}

func (c *mapCache) SetEx(key, value []byte, _ int) error {
	return c.Set(key, value)
}

func (c *mapCache) Delete(key []byte) bool {
	_, ok := c.entries[string(key)]
	delete(c.entries, string(key))
	return ok
}

func TestReportsAreCached(t *testing.T) {
	cache := newMapCache()
	router := fixtureRouter(t, cache)

	first := doGet(router, "/api/v1/delay/threshold?minutes=90")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, cache.sets)

	second := doGet(router, "/api/v1/delay/threshold?minutes=90")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, cache.sets, "repeat request must be served from cache")
	assert.Equal(t, first.Body.String(), second.Body.String())

	// different parameters compute and cache a fresh report
	third := doGet(router, "/api/v1/delay/threshold?minutes=120")
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, 2, cache.sets)
}
