package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"leadgen-engine/internal/events"
	"leadgen-engine/internal/secrets"
)

// WithDefaults fills the optional parts of d. Callers that share d between
// NewRouter and NewRunsHandler must apply it first so both see the same
// hub and run status.
func WithDefaults(d Deps) Deps {
	if d.Hub == nil {
		d.Hub = events.NewHub()
	}
	if d.RunStatus == nil {
		d.RunStatus = &atomic.Value{}
	}
	if _, ok := d.RunStatus.Load().(RunStatus); !ok {
		d.RunStatus.Store(RunStatus{})
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.BaseCtx == nil {
		d.BaseCtx = context.Background()
	}
	if d.SetSecret == nil {
		d.SetSecret = secrets.Set
	}
	return d
}

// NewRouter returns the chi router so main() can still attach /shutdown
// (needs srv+token).
func NewRouter(d Deps) chi.Router {
	d = WithDefaults(d)

	r := chi.NewRouter()
	r.Use(RequestID, Recover, AccessLog, Cors)

	r.Get("/health", HealthHandler{}.Health)

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	r.Route("/config", func(r chi.Router) {
		r.Get("/", ch.Get)
		r.Put("/", ch.Put)
		r.Get("/path", ch.Path)
		r.Get("/validate", ch.Validate)
	})

	// Secrets
	sh := SecretsHandler{Set: d.SetSecret}
	r.Put("/secrets/{account}", sh.Put)

	// Runs
	rh := NewRunsHandler(d)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", rh.List)
		r.Post("/", rh.Start)
		r.Get("/status", rh.Status)
		r.Get("/{id}", rh.Get)
		r.Get("/{id}/leads.csv", rh.LeadsCSV)
	})

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	r.Get("/events", eh.ServeSSE)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	return r
}
