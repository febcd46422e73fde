// internal/app/features/groups/routes.go
package groups

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes builds the /groups tree. Pages that live under a single group
// (chat, tasks) are passed in by name and mounted at /{id}/<name>.
func Routes(h *Handler, sm *auth.SessionManager, perGroup map[string]http.Handler) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST (sweeps expired groups first)
		pr.Get("/", h.ServeGroupsList)

		// CREATE
		pr.Get("/new", h.ServeNewGroup)
		pr.Post("/", h.HandleCreateGroup)

		// EDIT
		pr.Get("/{id}/edit", h.ServeEditGroup)
		pr.Post("/{id}/edit", h.HandleEditGroup)

		// DELETE
		pr.Post("/{id}/delete", h.HandleDeleteGroup)

		// MEMBERSHIP
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)

		for name, sub := range perGroup {
			pr.Mount("/{id}/"+name, sub)
		}
	})

	return r
}
