package tasks

import "github.com/go-chi/chi/v5"

// Routes is mounted at /groups/{id}/tasks behind the sign-in gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTasks)
	r.Post("/", h.HandleCreate)
	r.Post("/{taskID}/toggle", h.HandleToggle)
	r.Post("/{taskID}/delete", h.HandleDelete)
	return r
}
