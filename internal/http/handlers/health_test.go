package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := Probe{Name: "db", Check: func(context.Context) error { return nil }}
	down := Probe{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	cases := []struct {
		name   string
		probes []Probe
		status int
	}{
		{name: "no probes", status: http.StatusOK},
		{name: "all ok", probes: []Probe{ok}, status: http.StatusOK},
		{name: "one down", probes: []Probe{ok, down}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/readyz", NewHealthHandler(tc.probes...).Ready)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			var body struct {
				Ready  bool              `json:"ready"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Ready != (tc.status == http.StatusOK) {
				t.Fatalf("ready flag: %+v", body)
			}
			if len(body.Checks) != len(tc.probes) {
				t.Fatalf("checks: %+v", body.Checks)
			}
		})
	}
}
