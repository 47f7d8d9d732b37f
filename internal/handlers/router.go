package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/jmfields/stockroom/internal/store"
)

// NewRouter wires every route onto a fresh mux. CSRF and the outer
// middleware chain are applied by the caller.
func NewRouter(db *store.Store, sessionStore *sessions.CookieStore, templates *TemplateCache) *http.ServeMux {
	auth := &AuthHandler{Store: db, SessionStore: sessionStore, Templates: templates}
	inv := &InventoryHandler{Store: db, SessionStore: sessionStore, Templates: templates}
	userAdmin := &UserAdminHandler{Store: db, SessionStore: sessionStore, Templates: templates}

	mux := http.NewServeMux()

	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Public routes
	mux.HandleFunc("/{$}", inv.Index)
	mux.HandleFunc("GET /login", auth.LoginGet)
	mux.HandleFunc("POST /login", auth.LoginPost)
	mux.HandleFunc("GET /logout", auth.Logout)

	// Any logged-in identity
	mux.HandleFunc("GET /use_item/{id}", auth.RequireLogin(inv.UseItem))
	mux.HandleFunc("POST /use_item/{id}", auth.RequireLogin(inv.UseItem))

	// Admin-only. Management pages bounce unauthorized visitors to the login
	// form; mutations on the list bounce back to the list with a denial
	// notice.
	mux.HandleFunc("GET /add", auth.RequireAdmin("/login", inv.AddItemForm))
	mux.HandleFunc("POST /add", auth.RequireAdmin("/login", inv.AddItem))
	mux.HandleFunc("POST /undo_use/{id}", auth.RequireAdmin("/", inv.UndoUse))
	mux.HandleFunc("POST /delete_item/{id}", auth.RequireAdmin("/", inv.DeleteItem))
	mux.HandleFunc("GET /report", auth.RequireAdmin("/login", inv.Report))
	mux.HandleFunc("GET /admin/users", auth.RequireAdmin("/", userAdmin.ListUsers))
	mux.HandleFunc("GET /reset_password/{id}", auth.RequireAdmin("/login", userAdmin.ResetPasswordForm))
	mux.HandleFunc("POST /reset_password/{id}", auth.RequireAdmin("/login", userAdmin.ResetPassword))

	return mux
}
