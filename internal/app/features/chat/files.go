package chat

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const fileGoneMsg = "That file is no longer available."

// ServeFile handles GET /groups/{id}/chat/files/{msgID}. Roster members
// only. Local files are served directly; other backends redirect to a
// short-lived signed URL.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "chat")
	if !ok {
		return
	}
	msgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "msgID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, fileGoneMsg, groupURL(g))
		return
	}
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	att, err := h.Svc.Attachment(ctx, identity, g.ID, msgID)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		uierrors.RenderNotFound(w, r, fileGoneMsg, groupURL(g))
		return
	case errors.Is(err, lifecycle.ErrForbidden):
		h.Gate.Reject(w, r, g.ID, "chat")
		return
	case err != nil:
		h.Gate.Fail(w, r, err, "load attachment", groupURL(g))
		return
	}

	disposition := contentDisposition(att)

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	store := h.Svc.Files()

	if local, ok := store.(*storage.Local); ok {
		fullPath, err := local.GetFullPath(att.Path)
		if err != nil {
			h.Log.Error("error getting file path", zap.Error(err), zap.String("path", att.Path))
			uierrors.RenderServerError(w, r, "Failed to locate file.", groupURL(g))
			return
		}
		if _, err := os.Stat(fullPath); err != nil {
			h.Log.Warn("attachment missing on disk", zap.Error(err), zap.String("path", att.Path))
			uierrors.RenderNotFound(w, r, fileGoneMsg, groupURL(g))
			return
		}
		setFileHeaders(w, att, disposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := store.PresignedURL(ctx, att.Path, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: disposition,
	})
	if err == nil {
		http.Redirect(w, r, signedURL, http.StatusSeeOther)
		return
	}
	if !errors.Is(err, storage.ErrPresignNotSupported) {
		h.Log.Error("error generating signed URL", zap.Error(err), zap.String("path", att.Path))
		uierrors.RenderServerError(w, r, "Failed to generate download link.", groupURL(g))
		return
	}

	// Backends without signed URLs are streamed through the app.
	body, info, err := store.GetWithInfo(ctx, att.Path)
	if errors.Is(err, storage.ErrNotFound) {
		uierrors.RenderNotFound(w, r, fileGoneMsg, groupURL(g))
		return
	}
	if err != nil {
		h.Log.Error("error reading attachment", zap.Error(err), zap.String("path", att.Path))
		uierrors.RenderServerError(w, r, "Failed to read file.", groupURL(g))
		return
	}
	defer body.Close()

	setFileHeaders(w, att, disposition)
	if seeker, ok := body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, "", info.LastModified, seeker)
		return
	}
	if _, err := io.Copy(w, body); err != nil {
		h.Log.Debug("attachment stream interrupted", zap.Error(err), zap.String("path", att.Path))
	}
}

func setFileHeaders(w http.ResponseWriter, att models.Attachment, disposition string) {
	if att.ContentType != "" {
		w.Header().Set("Content-Type", att.ContentType)
	}
	w.Header().Set("Content-Disposition", disposition)
}

// contentDisposition shows raster images inline and offers everything else
// as a download under its original name.
func contentDisposition(att models.Attachment) string {
	disp := "attachment"
	if isInlineImage(att.ContentType) {
		disp = "inline"
	}
	name := att.Name
	if name == "" {
		name = "download"
	}
	if v := mime.FormatMediaType(disp, map[string]string{"filename": name}); v != "" {
		return v
	}
	return disp
}

func isInlineImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "image/svg")
}
