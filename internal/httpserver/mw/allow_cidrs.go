package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/utils"
)

// AllowOnlyCIDRS guards the ops endpoints (healthz, readyz, infra, metrics).
// Only callers inside the listed IPs/CIDRs get through, others get a JSON 403.
// An empty list does NOT filter. trustProxy should be true when running
// behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set, rejected := utils.ParseAddrSet(allowed)
	if len(rejected) > 0 {
		log.Warn("AllowOnlyCIDRS: ignoring unparsable entries", logger.Strings("entries", rejected))
	}
	if set.Empty() {
		log.Debug("AllowOnlyCIDRS: empty set, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !set.Contains(ip) {
				log.Debug("AllowOnlyCIDRS: rejected",
					logger.String("ip", ip.String()),
					logger.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
