package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmfields/stockroom/internal/store"
)

// sessionName is the single cookie session for everyone; the admin flag
// lives inside it rather than in a separate admin session.
const sessionName = "stockroom-session"

// Session value keys.
const (
	sessionKeyUser    = "user_id"
	sessionKeyIsAdmin = "is_admin"
)

type AuthHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

func (h *AuthHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("login.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AuthHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.Store.GetUserByUsername(username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("Login lookup failed", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Internal Server Error"})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// An unknown username and a wrong password get the same answer.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid username or password."})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// The admin flag is cached for the whole session; a role change in the
	// users table takes effect on the next login, not mid-session.
	session.Values[sessionKeyUser] = user.Username
	session.Values[sessionKeyIsAdmin] = user.IsAdmin()
	session.Options.Path = "/"
	session.AddFlash(FlashMessage{Type: "success", Message: "Logged in successfully!"})

	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Login successful", "username", user.Username, "admin", user.IsAdmin())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Options.MaxAge = -1 // Expire immediately
	session.AddFlash(FlashMessage{Type: "info", Message: "You have been logged out."})
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RequireLogin ensures some identity is logged in, admin or not.
func (h *AuthHandler) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, sessionName)
		if _, ok := session.Values[sessionKeyUser].(string); !ok {
			session.AddFlash(FlashMessage{Type: "error", Message: "Please log in first."})
			session.Save(r, w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireAdmin ensures the session's cached admin flag is set. Denials
// redirect to redirectTo: management pages send the visitor to the login
// form, while mutations on the list send them back to the list with a
// denial notice.
func (h *AuthHandler) RequireAdmin(redirectTo string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, sessionName)
		if admin, ok := session.Values[sessionKeyIsAdmin].(bool); !ok || !admin {
			session.AddFlash(FlashMessage{Type: "error", Message: "You do not have permission to do that."})
			session.Save(r, w)
			http.Redirect(w, r, redirectTo, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// isAdmin reads the cached admin flag from an already-fetched session.
func isAdmin(session *sessions.Session) bool {
	admin, ok := session.Values[sessionKeyIsAdmin].(bool)
	return ok && admin
}

// currentUser returns the logged-in username, or "" for anonymous visitors.
func currentUser(session *sessions.Session) string {
	user, _ := session.Values[sessionKeyUser].(string)
	return user
}
