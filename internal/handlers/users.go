package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmfields/stockroom/internal/store"
)

// UserAdminHandler covers the admin-only account pages: the user list and
// password resets. Reads and writes both go through the users table.
type UserAdminHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

func (h *UserAdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetAllUsers()
	if err != nil {
		slog.Error("Failed to fetch users", "error", err)
		http.Error(w, "Error fetching users", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("admin_users.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"Users":   users,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *UserAdminHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid user ID."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	user, err := h.Store.GetUserByID(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("Failed to fetch user", "id", id, "error", err)
		}
		session.AddFlash(FlashMessage{Type: "error", Message: "User not found."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	tmpl := h.Templates.Get("reset_password.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"User":      user,
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *UserAdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid user ID."})
		session.Save(r, w) // Save before redirect
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	if newPassword != confirmPassword {
		session.AddFlash(FlashMessage{Type: "error", Message: "Passwords do not match!"})
		session.Save(r, w)
		http.Redirect(w, r, fmt.Sprintf("/reset_password/%d", id), http.StatusSeeOther)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error resetting password."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if err := h.Store.UpdateUserPassword(id, string(hashed)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			session.AddFlash(FlashMessage{Type: "error", Message: "User not found."})
		} else {
			slog.Error("Failed to update password", "id", id, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Error resetting password."})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Password has been reset successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
