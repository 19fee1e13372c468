// Package suppliers serves the supplier section. CNPJ and phone number
// pass through the shared masks before submission so the catalog service
// always receives the canonical formatted value.
package suppliers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-app/stockroom/internal/catalog"
	"github.com/stockroom-app/stockroom/internal/format"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// Handler wires the suppliers section.
type Handler struct {
	logger    *slog.Logger
	client    *catalog.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *catalog.Client, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf}
}

// MountRoutes registers the section's routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

type supplierForm struct {
	Name        string
	CNPJ        string
	Address     string
	Phone       string
	Email       string
	MainContact string
}

type pageData struct {
	Suppliers []catalog.Supplier
	Form      supplierForm
	Errors    map[string]string
}

// List renders the suppliers page from a fresh fetch.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	data := pageData{Errors: map[string]string{}}

	suppliers, err := h.client.ListSuppliers(r.Context())
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		data.Errors["general"] = "Erro ao carregar fornecedores: " + err.Error()
	}
	data.Suppliers = suppliers

	h.render(w, r, data, http.StatusOK)
}

// Create submits the creation request, redirecting on success and
// re-rendering the form with the entered values on failure.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := supplierForm{
		Name:        r.PostFormValue("name"),
		CNPJ:        format.MaskCNPJ(r.PostFormValue("cnpj")),
		Address:     r.PostFormValue("address"),
		Phone:       format.MaskPhone(r.PostFormValue("phone")),
		Email:       r.PostFormValue("email"),
		MainContact: r.PostFormValue("mainContact"),
	}

	message, err := h.client.CreateSupplier(r.Context(), catalog.CreateSupplierRequest{
		Name:        form.Name,
		CNPJ:        form.CNPJ,
		Address:     form.Address,
		Phone:       form.Phone,
		Email:       form.Email,
		MainContact: form.MainContact,
	})
	if err != nil {
		fieldErrors := map[string]string{}
		summary := "Erro ao cadastrar fornecedor"
		var apiErr *catalog.APIError
		if errors.As(err, &apiErr) {
			for field, msg := range apiErr.FieldErrors {
				fieldErrors[field] = msg
			}
			if apiErr.Message != "" {
				summary = apiErr.Message
			}
		} else {
			summary = err.Error()
		}
		fieldErrors["general"] = summary

		data := pageData{Form: form, Errors: fieldErrors}
		suppliers, listErr := h.client.ListSuppliers(r.Context())
		if listErr != nil {
			h.logger.Warn("list suppliers after failed create", slog.Any("error", listErr))
		}
		data.Suppliers = suppliers

		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	if message == "" {
		message = "Fornecedor cadastrado com sucesso!"
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Fornecedores",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/suppliers.html", viewData); err != nil {
		h.logger.Error("render suppliers page", slog.Any("error", err))
	}
}
