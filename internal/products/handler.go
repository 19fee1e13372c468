// Package products serves the product section: a creation form plus the
// full product listing, always re-fetched from the catalog service.
package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-app/stockroom/internal/catalog"
	"github.com/stockroom-app/stockroom/internal/format"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// Categories is the fixed product category set offered by the form.
var Categories = []string{"Eletrônicos", "Alimentos", "Vestuário", "Higiene", "Outro"}

// Handler wires the products section.
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

type productForm struct {
	Name        string
	Barcode     string
	Description string
	Price       string
	Quantity    string
	Category    string
	Expiry      string
	ImageURL    string
}

type pageData struct {
	Products   []catalog.Product
	Categories []string
	Form       productForm
	Errors     map[string]string
}

// List renders the products page from a fresh fetch.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	data := pageData{Categories: Categories, Errors: map[string]string{}}

	products, err := h.client.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		data.Errors["general"] = "Erro ao carregar produtos: " + err.Error()
	}
	data.Products = products

	h.render(w, r, data, http.StatusOK)
}

// Create submits the creation request. On success the browser is
// redirected back to a fresh listing (the form clears, the list
// reloads); on failure the form re-renders with the entered values and
// the server's field errors attached inline.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := productForm{
		Name:        r.PostFormValue("name"),
		Barcode:     r.PostFormValue("barcode"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		Quantity:    r.PostFormValue("quantity"),
		Category:    r.PostFormValue("category"),
		Expiry:      r.PostFormValue("expiry"),
		ImageURL:    r.PostFormValue("imageUrl"),
	}

	fieldErrors := map[string]string{}

	quantity := 0
	if q := strings.TrimSpace(form.Quantity); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			fieldErrors["quantity"] = "Quantidade deve ser um número inteiro não negativo"
		} else {
			quantity = n
		}
	}

	// Comma decimals are canonicalized; anything else goes to the
	// server as typed so its validation stays authoritative.
	price := form.Price
	if normalized, ok := format.NormalizeDecimal(form.Price); ok {
		price = normalized
	}

	if len(fieldErrors) > 0 {
		h.renderCreateFailure(w, r, form, fieldErrors, "")
		return
	}

	message, err := h.client.CreateProduct(r.Context(), catalog.CreateProductRequest{
		Name:        form.Name,
		Price:       price,
		Barcode:     form.Barcode,
		Description: form.Description,
		Quantity:    quantity,
		Category:    form.Category,
		Expiry:      form.Expiry,
		ImageURL:    form.ImageURL,
	})
	if err != nil {
		summary := "Erro ao cadastrar produto"
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
		h.renderCreateFailure(w, r, form, fieldErrors, summary)
		return
	}

	if message == "" {
		message = "Produto cadastrado com sucesso!"
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: message})
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *Handler) renderCreateFailure(w http.ResponseWriter, r *http.Request, form productForm, fieldErrors map[string]string, summary string) {
	data := pageData{Categories: Categories, Form: form, Errors: fieldErrors}
	if summary != "" {
		data.Errors["general"] = summary
	}

	// The listing still reloads underneath a failed submission.
	products, err := h.client.ListProducts(r.Context())
	if err != nil {
		h.logger.Warn("list products after failed create", slog.Any("error", err))
	}
	data.Products = products

	h.render(w, r, data, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Produtos",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/products.html", viewData); err != nil {
		h.logger.Error("render products page", slog.Any("error", err))
	}
}
