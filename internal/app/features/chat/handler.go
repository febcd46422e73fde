// Package chat serves a study group's message board. Only roster members
// may read or post; messages may carry one uploaded file.
package chat

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	"github.com/dalemusser/studyhub/internal/app/features/shared/groupgate"
	"github.com/dalemusser/studyhub/internal/app/lifecycle"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/viewdata"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// DefaultMaxUpload applies when no upload limit is configured.
const DefaultMaxUpload int64 = 10 << 20

type Handler struct {
	Svc       *lifecycle.Service
	Gate      *groupgate.Gate
	Flash     *flash.Flasher
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
	MaxUpload int64
}

func NewHandler(svc *lifecycle.Service, fl *flash.Flasher, errLog *uierrors.ErrorLogger, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Handler{
		Svc:       svc,
		Gate:      groupgate.New(svc, fl, errLog),
		Flash:     fl,
		ErrLog:    errLog,
		Log:       logger,
		MaxUpload: maxUpload,
	}
}

type messageRow struct {
	Sender   string
	Body     template.HTML
	Posted   string
	Mine     bool
	FileURL  string
	FileName string
	IsImage  bool
}

type chatData struct {
	viewdata.BaseVM
	GroupID   string
	GroupName string
	Messages  []messageRow
	Error     string
	Content   string
	MaxUpload string
}

// ServeChat handles GET /groups/{id}/chat.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "chat")
	if !ok {
		return
	}
	h.render(w, r, g, http.StatusOK, "", "")
}

// HandlePost handles POST /groups/{id}/chat (multipart: content, file).
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	g, ok := h.Gate.Member(w, r, "chat")
	if !ok {
		return
	}
	identity, _ := auth.Identity(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		if isTooLarge(err) {
			h.render(w, r, g, http.StatusRequestEntityTooLarge, "File is too large. The limit is "+formatSize(h.MaxUpload)+".", "")
			return
		}
		uierrors.RenderBadRequest(w, r, "Invalid form data.", groupURL(g))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	in := lifecycle.MessageInput{Content: r.FormValue("content")}

	file, hdr, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		uierrors.RenderBadRequest(w, r, "Could not read the uploaded file.", groupURL(g))
		return
	default:
		defer file.Close()
		// The form may already have been parsed upstream (CSRF check)
		// without the body limit.
		if hdr.Size > h.MaxUpload {
			h.render(w, r, g, http.StatusRequestEntityTooLarge, "File is too large. The limit is "+formatSize(h.MaxUpload)+".", in.Content)
			return
		}
		if hdr.Filename != "" {
			in.File = &lifecycle.Upload{
				Name:        hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	msg, err := h.Svc.PostMessage(ctx, identity, g.ID, in)
	if ve, ok := lifecycle.IsValidation(err); ok {
		h.render(w, r, g, http.StatusUnprocessableEntity, ve.Message, in.Content)
		return
	}
	if errors.Is(err, lifecycle.ErrForbidden) {
		h.Gate.Reject(w, r, g.ID, "chat")
		return
	}
	if err != nil {
		h.Gate.Fail(w, r, err, "post message", groupURL(g))
		return
	}

	h.Log.Debug("message posted",
		zap.String("group_id", g.ID.Hex()),
		zap.String("sender", identity),
		zap.Bool("file", msg.HasFile()))
	http.Redirect(w, r, groupURL(g), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, g models.Group, status int, errMsg, content string) {
	identity, _ := auth.Identity(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	current, msgs, err := h.Svc.ListMessages(ctx, identity, g.ID)
	if errors.Is(err, lifecycle.ErrForbidden) {
		h.Gate.Reject(w, r, g.ID, "chat")
		return
	}
	if err != nil {
		h.Gate.Fail(w, r, err, "list messages", "/groups")
		return
	}
	g = current

	data := chatData{
		BaseVM:    viewdata.NewBaseVM(w, r, h.Flash, g.Name+" · Chat", "/groups"),
		GroupID:   g.ID.Hex(),
		GroupName: g.Name,
		Messages:  make([]messageRow, 0, len(msgs)),
		Error:     errMsg,
		Content:   content,
		MaxUpload: formatSize(h.MaxUpload),
	}
	for _, m := range msgs {
		data.Messages = append(data.Messages, toRow(m, identity))
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "chat", data)
}

func toRow(m models.Message, identity string) messageRow {
	row := messageRow{
		Sender: m.Sender,
		Body:   htmlsanitize.PlainTextToHTML(m.Content),
		Posted: m.CreatedAt.UTC().Format("Jan 2 15:04"),
		Mine:   m.Sender == identity,
	}
	if m.HasFile() {
		row.FileURL = lifecycle.AttachmentURL(m.GroupID, m.ID)
		row.FileName = m.File.Name
		row.IsImage = isInlineImage(m.File.ContentType)
	}
	return row
}

func groupURL(g models.Group) string {
	return "/groups/" + g.ID.Hex() + "/chat"
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	if n >= 1<<10 {
		return fmt.Sprintf("%d KB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

func isTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large")
}
