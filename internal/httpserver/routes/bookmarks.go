package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
	"github.com/MrSnakeDoc/marks/internal/utils"
)

func init() { Register(UI, registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Index(d))
	r.Get("/bookmarks", handlers.ViewBookmarks(d))

	// Inserts are limited per client; viewing is not.
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:     d.RateLimitBurst,
		PerMinute: d.RateLimitPerMin,
		Key: func(r *http.Request) string {
			return "insert:" + utils.ClientIP(r, d.TrustProxy).String()
		},
		Reject: handlers.InsertRateLimited(d),
	})).Post("/bookmarks", handlers.AddBookmark(d))
}
