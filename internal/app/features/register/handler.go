// Package register serves account creation. A new account is signed in
// immediately and lands on the group list.
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studyhub/internal/app/features/errors"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/app/system/flash"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Flash      *flash.Flasher
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, fl *flash.Flasher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Flash:      fl,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type registerFormData struct {
	viewdata.BaseVM
	Error    string
	Username string
}

// GET /register
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(w, r, h.Flash, "Register", "/"),
	})
}

// POST /register
func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/register")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if err := authutil.ValidateUsername(username); err != nil {
		h.renderFormWithError(w, r, capitalize(err.Error()), username)
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.renderFormWithError(w, r, capitalize(err.Error()), username)
		return
	}
	if password != confirm {
		h.renderFormWithError(w, r, capitalize(authutil.ErrPasswordMismatch.Error()), username)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: hash password failed", err, "Could not create your account.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, username, hash)
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		h.renderFormWithError(w, r, capitalize(err.Error()), username)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: create user failed", err, "A database error occurred.", "/register")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.Username); err != nil {
		h.ErrLog.LogServerError(w, r, "register: save session failed", err, "Your account was created but we could not sign you in.", "/login")
		return
	}

	h.Log.Info("user registered", zap.String("username", u.Username))
	h.Flash.Add(w, r, flash.Success, "Welcome, "+u.Username+"!")
	http.Redirect(w, r, "/groups", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "register", registerFormData{
		BaseVM:   viewdata.NewBaseVM(w, r, h.Flash, "Register", "/"),
		Error:    msg,
		Username: username,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
