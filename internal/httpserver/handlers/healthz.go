package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status        string    `json:"status"`
	Started       string    `json:"started"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Store         string    `json:"store,omitempty"`
	Build         buildInfo `json:"build"`
}

// Healthz is the liveness probe. It never touches the store: a Redis outage
// shows on /readyz, not here.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := nowFunc(d)
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}
	started := d.StartTime.UTC().Format(time.RFC3339)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:        "ok",
			Started:       started,
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Store:         d.StoreBackend,
			Build:         build,
		})
	}
}
