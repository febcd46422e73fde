// internal/app/features/errors/render.go
package errors

import (
	"net/http"
)

// RenderForbidden shows the access denied page with msg.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "You don't have permission to do that."
	}
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows the not found page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "We couldn't find what you were looking for."
	}
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows a generic invalid request page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "The request could not be understood."
	}
	render(w, r, http.StatusBadRequest, "Bad request", msg, backURL)
}

// RenderServerError shows the generic failure page. Callers log first;
// see ErrorLogger.LogServerError.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}
