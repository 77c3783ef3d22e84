// README: Handler tests over a wired router with stub providers.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/circuit"
	transport "dispatch/internal/http"
	gmaps "dispatch/internal/maps"
	"dispatch/internal/modules/dedup"
	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/modules/travel"
	"dispatch/internal/service"
	"dispatch/internal/types"

	ailib "dispatch/internal/ai"
)

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, address string) (gmaps.GeocodeResult, error) {
	if strings.Contains(strings.ToLower(address), "sunset") {
		return gmaps.GeocodeResult{
			Formatted: "789 Sunset Blvd, Beverly Hills, CA 90210",
			Point:     types.Point{Lat: 34.0901, Lng: -118.4065},
		}, nil
	}
	return gmaps.GeocodeResult{}, gmaps.ErrNoResult
}

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.DiscardHandler)
	breakers := circuit.NewRegistry(5, 30*time.Second)

	dispatcher := service.NewDispatcher(service.Deps{
		Extractor: ailib.NewExtractor(nil, breakers.Get("llm"), logger),
		Resolver:  geo.NewResolver(stubGeocoder{}, breakers.Get("geocoding"), logger),
		Engine:    schedule.NewEngine(travel.NewEstimator(nil, breakers.Get("traffic"), logger)),
		Dedup:     dedup.NewMemoryStore(100, time.Hour),
		Breakers:  breakers,
		Logger:    logger,
		Deadline:  2 * time.Second,
	})
	return transport.NewRouter(transport.RouterDeps{
		Dispatcher: dispatcher,
		Breakers:   breakers,
		Logger:     logger,
		Version:    "test",
	})
}

func validRequest() map[string]any {
	hours := map[string]any{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[d] = map[string]string{"start": "08:00", "end": "18:00"}
	}
	phoneHours := map[string]any{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		phoneHours[d] = map[string]string{"start": "07:00", "end": "22:00"}
	}
	return map[string]any{
		"caller_phone":     "+13105551234",
		"called_number":    "+12135550100",
		"conversation_sid": "conv-http-1",
		"current_message":  "Water heater burst! 789 Sunset Blvd, 90210",
		"current_time":     "2025-08-06T21:15:00Z",
		"business_profile": map[string]any{
			"business_name":        "Hank's Plumbing",
			"trade":                "plumbing",
			"timezone":             "America/Los_Angeles",
			"anchor_address":       map[string]any{"address": "100 Main St", "lat": 34.0522, "lng": -118.2437},
			"service_radius_miles": 25,
			"business_hours":       hours,
			"phone_hours":          phoneHours,
			"capacity":             map[string]any{"max_jobs_per_day": 6, "min_buffer_between_jobs": 15, "max_after_hours_jobs_per_day": 2},
			"travel":               map[string]any{"max_travel_time_minutes": 60, "max_travel_distance_miles": 25},
			"toggles":              map[string]any{"accept_emergencies": true, "accept_after_hours_emergency": true},
			"pricing": []map[string]any{
				{"job_type": "water_heater", "estimated_hours": 2.5, "cost_min": 150, "cost_max": 300},
			},
		},
		"calendar": []any{},
	}
}

func post(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/dispatch/process", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDispatchMalformedJSONIs400(t *testing.T) {
	r := buildTestRouter(t)
	w := post(t, r, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct{ Code string } `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "malformed_json", resp.Error.Code)
}

func TestDispatchInvalidPhoneIs422(t *testing.T) {
	r := buildTestRouter(t)
	body := validRequest()
	body["caller_phone"] = "310-555-1234"
	w := post(t, r, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code  string `json:"code"`
			Field string `json:"field"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "caller_phone", resp.Error.Field)
}

func TestDispatchMessageTooLongIs422(t *testing.T) {
	r := buildTestRouter(t)
	body := validRequest()
	body["current_message"] = strings.Repeat("x", 1001)
	w := post(t, r, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDispatchBadRadiusIs422(t *testing.T) {
	r := buildTestRouter(t)
	body := validRequest()
	body["business_profile"].(map[string]any)["service_radius_miles"] = 500
	w := post(t, r, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDispatchHappyPathReturnsDecision(t *testing.T) {
	r := buildTestRouter(t)
	w := post(t, r, validRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var decision map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	assert.NotEmpty(t, decision["conversation_stage"])
	assert.NotEmpty(t, decision["next_action"])
	assert.NotEmpty(t, decision["message_to_customer"])
}

func TestDispatchUnknownFieldsIgnored(t *testing.T) {
	r := buildTestRouter(t)
	body := validRequest()
	body["future_field"] = map[string]any{"x": 1}
	w := post(t, r, body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDispatchReplayReturnsSameBody(t *testing.T) {
	r := buildTestRouter(t)
	first := post(t, r, validRequest())
	second := post(t, r, validRequest())
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	r := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status    string            `json:"status"`
		Version   string            `json:"version"`
		Providers map[string]string `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Contains(t, resp.Providers, "geocoding")
	assert.Contains(t, resp.Providers, "llm")
	assert.Contains(t, resp.Providers, "traffic")
}
