package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/jmfields/stockroom/internal/models"
	"github.com/jmfields/stockroom/internal/store"
)

type InventoryHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

// Index lists every inventory row. No auth required; the template decides
// which actions to offer from LoggedIn/IsAdmin.
func (h *InventoryHandler) Index(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.GetAllItems()
	if err != nil {
		slog.Error("Failed to fetch inventory", "error", err)
		http.Error(w, "Error fetching items", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("home.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"Items":     items,
		"Flashes":   GetFlash(session),
		"LoggedIn":  currentUser(session) != "",
		"IsAdmin":   isAdmin(session),
		"CsrfField": csrf.TemplateField(r),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *InventoryHandler) AddItemForm(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("add.html")
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

func (h *InventoryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	name := r.FormValue("name")
	quantityStr := r.FormValue("quantity")
	expiryDate := r.FormValue("expiry_date")
	minQuantityStr := r.FormValue("min_quantity")

	if name == "" || expiryDate == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "Name and expiry date are required."})
		session.Save(r, w) // Save before redirect
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}
	quantity, err := strconv.Atoi(quantityStr)
	if err != nil || quantity < 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Quantity must be a non-negative number."})
		session.Save(r, w)
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}
	minQuantity, err := strconv.Atoi(minQuantityStr)
	if err != nil || minQuantity < 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Minimum quantity must be a non-negative number."})
		session.Save(r, w)
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}

	item := &models.Item{
		Name:        name,
		Quantity:    quantity,
		ExpiryDate:  expiryDate,
		MinQuantity: minQuantity,
	}
	if err := h.Store.CreateItem(item); err != nil {
		slog.Error("Failed to insert item", "name", name, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving item to database."})
		session.Save(r, w)
		http.Redirect(w, r, "/add", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Item added successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UseItem marks one unit of the item as consumed. Any logged-in identity may
// do this; depleted items are left at zero.
func (h *InventoryHandler) UseItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid item ID."})
		session.Save(r, w) // Save before redirect
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	item, err := h.Store.UseItem(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		session.AddFlash(FlashMessage{Type: "error", Message: "Item not found."})
	case errors.Is(err, store.ErrOutOfStock):
		session.AddFlash(FlashMessage{Type: "error", Message: "No items left to use!"})
	case err != nil:
		slog.Error("Failed to mark item used", "id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error updating item."})
	default:
		session.AddFlash(FlashMessage{
			Type:    "success",
			Message: fmt.Sprintf("%s marked as used. New quantity: %d", item.Name, item.Quantity),
		})
	}
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UndoUse clears the item's last_used marker. Quantity is untouched; the
// operation is idempotent.
func (h *InventoryHandler) UndoUse(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid item ID."})
		session.Save(r, w) // Save before redirect
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.Store.UndoUse(id); err != nil {
		slog.Error("Failed to undo item use", "id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error undoing item use."})
		session.Save(r, w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Item use was successfully undone!"})
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid item ID."})
		session.Save(r, w) // Save before redirect
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.Store.DeleteItem(id); err != nil {
		// Keep the diagnostic in the log; the visitor only needs to know the
		// delete did not happen.
		slog.Error("Failed to delete item", "id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting item."})
		session.Save(r, w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Item deleted successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Report renders the reorder report: every item below its minimum quantity.
func (h *InventoryHandler) Report(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.GetLowStockItems()
	if err != nil {
		slog.Error("Failed to fetch reorder report", "error", err)
		http.Error(w, "Error fetching report", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("report.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, sessionName)
	data := map[string]interface{}{
		"Items":   items,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
