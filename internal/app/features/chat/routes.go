package chat

import "github.com/go-chi/chi/v5"

// Routes is mounted at /groups/{id}/chat behind the sign-in gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeChat)
	r.Post("/", h.HandlePost)
	r.Get("/files/{msgID}", h.ServeFile)
	return r
}
