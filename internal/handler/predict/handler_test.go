package predict

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getaround-ml/pricing-inference/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
	m.Run()
}

// pricingBundle mirrors the production feature layout: thirteen features in
// training order, priced by a single-leaf forest so expectations stay exact.
func pricingBundle(t *testing.T) *model.Bundle {
	t.Helper()
	categorical := func(name string, categories ...string) model.Feature {
		return model.Feature{Name: name, Kind: model.KindCategorical, Categories: categories}
	}
	numeric := func(name string) model.Feature {
		return model.Feature{Name: name, Kind: model.KindNumeric}
	}
	boolean := func(name string) model.Feature {
		return model.Feature{Name: name, Kind: model.KindBoolean}
	}
	bundle, err := model.FromArtifact(&model.Artifact{
		Version: 1,
		Features: []model.Feature{
			categorical("model_key", "Citroën", "Peugeot", "Renault"),
			numeric("mileage"),
			numeric("engine_power"),
			categorical("fuel", "diesel", "petrol"),
			categorical("paint_color", "black", "grey", "white"),
			categorical("car_type", "convertible", "estate", "sedan"),
			boolean("private_parking_available"),
			boolean("has_gps"),
			boolean("has_air_conditioning"),
			boolean("automatic_car"),
			boolean("has_getaround_connect"),
			boolean("has_speed_regulator"),
			boolean("winter_tires"),
		},
		Forest: model.Forest{Trees: []model.Tree{{
			Feature:   []int{-1},
			Threshold: []float64{0},
			Left:      []int{-1},
			Right:     []int{-1},
			Value:     []float64{118.74},
		}}},
	})
	require.NoError(t, err)
	return bundle
}

func newRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.POST("/predict", handler.Predict)
	return router
}

func doPredict(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

const validRow = `["Peugeot", 174631, 120, "diesel", "black", "convertible", true, true, false, false, false, false, true]`

func TestPredict(t *testing.T) {
	router := newRouter(NewHandler(pricingBundle(t), nil))

	recorder := doPredict(t, router, `{"input": [`+validRow+`]}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Prediction, 1)
	assert.Greater(t, response.Prediction[0], 0.0)
	assert.InDelta(t, 118.74, response.Prediction[0], 1e-9)
}

func TestPredict_BatchPreservesOrder(t *testing.T) {
	router := newRouter(NewHandler(pricingBundle(t), nil))

	recorder := doPredict(t, router, `{"input": [`+validRow+`, `+validRow+`, `+validRow+`]}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.Prediction, 3)
}

func TestPredict_UnseenCategory(t *testing.T) {
	router := newRouter(NewHandler(pricingBundle(t), nil))

	row := strings.Replace(validRow, `"Peugeot"`, `"Lada"`, 1)
	recorder := doPredict(t, router, `{"input": [`+row+`]}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Prediction, 1)
	assert.InDelta(t, 118.74, response.Prediction[0], 1e-9)
}

func TestPredict_RequestErrors(t *testing.T) {
	router := newRouter(NewHandler(pricingBundle(t), nil))

	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "not json",
			body:   `not json`,
			errMsg: "",
		},
		{
			name:   "missing input key",
			body:   `{"rows": [` + validRow + `]}`,
			errMsg: "required",
		},
		{
			name:   "empty batch",
			body:   `{"input": []}`,
			errMsg: "input is empty",
		},
		{
			name:   "short row",
			body:   `{"input": [["Peugeot", 174631]]}`,
			errMsg: "has 2 values, expected 13",
		},
		{
			name:   "boolean as string",
			body:   strings.Replace(`{"input": [`+validRow+`]}`, `true, true, false`, `"true", true, false`, 1),
			errMsg: "expected JSON boolean, got string",
		},
		{
			name:   "number as string",
			body:   strings.Replace(`{"input": [`+validRow+`]}`, `174631`, `"174631"`, 1),
			errMsg: "expected JSON number, got string",
		},
		{
			name:   "null cell",
			body:   strings.Replace(`{"input": [`+validRow+`]}`, `"diesel"`, `null`, 1),
			errMsg: "expected JSON string, got null",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doPredict(t, router, tt.body)
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.errMsg)
		})
	}
}

// mapCache is a minimal in-process stand-in for the freecache-backed cache.
type mapCache struct {
	entries map[string][]byte
	gets    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(key []byte) ([]byte, error) {
	c.gets++
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

func TestPredict_MemoReusesPriorPredictions(t *testing.T) {
	cache := newMapCache()
	router := newRouter(NewHandler(pricingBundle(t), NewMemo(cache, 60)))

	first := doPredict(t, router, `{"input": [`+validRow+`]}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, cache.sets)

	second := doPredict(t, router, `{"input": [`+validRow+`]}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, cache.sets, "second identical row must be served from the memo")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestNewMemo_NilCache(t *testing.T) {
	assert.Nil(t, NewMemo(nil, 60))
}
