package deps

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/views"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedHosts    []string         // Host headers allowed to reach the UI routes
	AllowedCIDRS    []string         // IPs allowed to access healthz/readyz/infra/metrics
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	StoreBackend    string           // "redis" | "memory", reported by /infra
	Collection      string           // document collection name, reported by /infra
	Bookmarks       *domain.Service  // insert/list entry point
	Views           *views.Renderer  // HTML pages
	Metrics         http.Handler     // Prometheus exposition, nil disables /metrics
	RateLimitBurst  int              // POST /bookmarks tokens per client
	RateLimitPerMin int              // POST /bookmarks refill per client
}
