package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

// Registrar mounts the routes of one file on r.
type Registrar func(r chi.Router, d deps.Deps)

// Group selects the guard RegisterAll puts in front of a registrar.
type Group int

const (
	UI  Group = iota // HTML pages, behind EnforceHost
	Ops              // probes and metrics, behind AllowOnlyCIDRS
)

type entry struct {
	group Group
	reg   Registrar
}

var registry []entry

// Register adds a registrar to group. Called from init().
func Register(group Group, reg Registrar) {
	registry = append(registry, entry{group: group, reg: reg})
}

// RegisterAll mounts every registered route behind its group guard. Called
// once per router from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	guards := map[Group]func(http.Handler) http.Handler{
		UI:  mw.EnforceHost(d.AllowedHosts, d.Logger),
		Ops: mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
	}
	for _, e := range registry {
		e.reg(r.With(guards[e.group]), d)
	}
}
