package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/views"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// Index renders the landing page. ?menu=view switches to the view form.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, d, http.StatusOK, views.Page{
			Menu: views.NormalizeMenu(r.URL.Query().Get("menu")),
		})
	}
}

// AddBookmark handles the insert form. Rejected submissions are echoed back
// with a 422 and never reach the store.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			d.Logger.Debug("unreadable insert form", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		form := views.Form{
			Link:        r.PostFormValue("link"),
			Description: r.PostFormValue("description"),
			Keywords:    r.PostFormValue("keywords"),
			Category:    r.PostFormValue("category"),
		}
		page := views.Page{Menu: views.MenuInsert, Form: form}

		_, err := d.Bookmarks.Add(r.Context(), domain.Submission{
			Link:        form.Link,
			Description: form.Description,
			Keywords:    form.Keywords,
			Category:    form.Category,
		})

		switch {
		case err == nil:
			page.Form = views.Form{Category: form.Category}
			page.Flashes = []views.Flash{{Kind: views.FlashSuccess, Text: views.MsgAdded}}
			renderPage(w, d, http.StatusOK, page)

		case errors.Is(err, domain.ErrMissingFields):
			page.Flashes = []views.Flash{{Kind: views.FlashError, Text: views.MsgMissingFields}}
			renderPage(w, d, http.StatusUnprocessableEntity, page)

		case errors.Is(err, domain.ErrUnknownCategory):
			page.Flashes = []views.Flash{{Kind: views.FlashError, Text: views.MsgBadCategory}}
			renderPage(w, d, http.StatusUnprocessableEntity, page)

		default:
			page.Flashes = []views.Flash{{Kind: views.FlashError, Text: views.MsgInsertFailed}}
			renderPage(w, d, http.StatusInternalServerError, page)
		}
	}
}

// ViewBookmarks lists one category, oldest first. A store failure is shown
// on the page next to an empty result and still answers 200.
func ViewBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("category")
		page := views.Page{Menu: views.MenuView}

		if raw == "" {
			renderPage(w, d, http.StatusOK, page)
			return
		}

		category, err := domain.ParseCategory(raw)
		if err != nil {
			page.Flashes = []views.Flash{{Kind: views.FlashError, Text: views.MsgBadCategory}}
			renderPage(w, d, http.StatusBadRequest, page)
			return
		}
		page.Selected = category

		list, err := d.Bookmarks.ByCategory(r.Context(), category)
		if err != nil {
			page.Flashes = append(page.Flashes,
				views.Flash{Kind: views.FlashError, Text: views.MsgQueryFailed},
				views.Flash{Kind: views.FlashError, Text: err.Error()},
			)
		}
		if len(list) == 0 {
			page.Flashes = append(page.Flashes, views.Flash{Kind: views.FlashInfo, Text: views.MsgNoBookmarks})
		}
		page.Results = list

		renderPage(w, d, http.StatusOK, page)
	}
}

// InsertRateLimited renders the insert form with a retry notice and a 429.
// The submitted values are echoed so nothing typed is lost.
func InsertRateLimited(d deps.Deps) func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	return func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
		d.Logger.Info("bookmark insert rate limited",
			logger.String("remote_ip", r.RemoteAddr),
			logger.Duration("retry_after", retryAfter))

		renderPage(w, d, http.StatusTooManyRequests, views.Page{
			Menu: views.MenuInsert,
			Form: views.Form{
				Link:        r.PostFormValue("link"),
				Description: r.PostFormValue("description"),
				Keywords:    r.PostFormValue("keywords"),
				Category:    r.PostFormValue("category"),
			},
			Flashes: []views.Flash{{
				Kind: views.FlashError,
				Text: fmt.Sprintf(views.MsgRateLimited, int(retryAfter/time.Second)),
			}},
		})
	}
}

func renderPage(w http.ResponseWriter, d deps.Deps, status int, page views.Page) {
	var buf bytes.Buffer
	if err := d.Views.Render(&buf, page); err != nil {
		d.Logger.Error("failed to render page", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

func nowFunc(d deps.Deps) func() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow
	}
	return time.Now
}
