package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Collection string                     `json:"collection"`
	Components map[string]componentStatus `json:"components"`
	Bookmarks  map[string]int64           `json:"bookmarks,omitempty"`
	Total      int64                      `json:"total"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(r.Context(), storePingTimeout)
		defer cancel()

		store := checkStore(ctx, d)
		response := infraResponse{
			Collection: d.Collection,
			Components: map[string]componentStatus{
				"store": store,
				"index": {OK: true, Mode: "category+date_added"},
			},
		}

		if store.OK {
			counts, err := d.Bookmarks.Counts(ctx)
			if err != nil {
				store.OK = false
				store.Error = "count failed"
				response.Components["store"] = store
			} else {
				response.Bookmarks = make(map[string]int64, len(counts))
				for _, c := range domain.Categories() {
					response.Bookmarks[c.String()] = counts[c]
					response.Total += counts[c]
				}
			}
		}
		response.Status = determineStatus(response.Components)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineStatus(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "degraded"
	}
	return "operational"
}

// checkStore pings the store. A nil service reports not ready.
func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Bookmarks == nil {
		return componentStatus{
			OK:      false,
			Backend: d.StoreBackend,
			Error:   "store not initialized",
		}
	}

	if err := d.Bookmarks.Ping(ctx); err != nil {
		d.Logger.Warn("store ping failed", logger.Error(err))
		return componentStatus{
			OK:      false,
			Backend: d.StoreBackend,
			Error:   "unreachable",
		}
	}

	return componentStatus{
		OK:      true,
		Backend: d.StoreBackend,
	}
}
