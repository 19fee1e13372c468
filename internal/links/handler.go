// Package links serves the supplier-product association workflow: pick a
// supplier, review its linked products, link and unlink. Every mutation
// ends in a redirect back to the selected supplier so the linked list is
// re-fetched from the catalog service rather than assumed.
package links

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-app/stockroom/internal/catalog"
	"github.com/stockroom-app/stockroom/internal/format"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// Handler wires the association workflow.
type Handler struct {
	logger    *slog.Logger
	client    *catalog.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *catalog.Client, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		client:    client,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
	}
}

// MountRoutes registers the section's routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Page)
	r.Post("/", h.Link)
	r.Post("/{productID}/delete", h.Unlink)
}

type linkForm struct {
	SupplierID   string `validate:"required,number"`
	ProductID    string `validate:"required,number"`
	Price        string
	LeadTimeDays string `validate:"omitempty,number"`
}

type pageData struct {
	Suppliers        []catalog.Supplier
	Products         []catalog.Product
	SelectedSupplier int64
	SupplierChosen   bool
	Linked           []catalog.LinkedProduct
	Form             linkForm
	Errors           map[string]string
}

// Page renders the association page. The supplier and product pick lists
// are independent and fetched concurrently; the linked-products table is
// fetched only when a supplier is selected.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	supplierID, _ := strconv.ParseInt(r.URL.Query().Get("supplier"), 10, 64)

	data, err := h.loadPage(r.Context(), supplierID)
	if err != nil {
		h.logger.Error("load link page", slog.Any("error", err))
		data.Errors["general"] = "Erro ao carregar listas: " + err.Error()
	}

	h.render(w, r, data, http.StatusOK)
}

// Link associates the chosen supplier and product. Both choices are
// required before any request leaves the process; price and lead time
// are optional and sent only when filled in.
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := linkForm{
		SupplierID:   strings.TrimSpace(r.PostFormValue("supplier")),
		ProductID:    strings.TrimSpace(r.PostFormValue("product")),
		Price:        strings.TrimSpace(r.PostFormValue("price")),
		LeadTimeDays: strings.TrimSpace(r.PostFormValue("leadTimeDays")),
	}

	fieldErrors := map[string]string{}
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "SupplierID":
				fieldErrors["supplier"] = "Escolha um fornecedor"
			case "ProductID":
				fieldErrors["product"] = "Escolha um produto"
			case "LeadTimeDays":
				fieldErrors["leadTimeDays"] = "Prazo deve ser um número de dias"
			}
		}
	}

	var req catalog.LinkRequest
	if form.Price != "" {
		normalized, ok := format.NormalizeDecimal(form.Price)
		if !ok {
			fieldErrors["price"] = "Preço negociado inválido"
		} else {
			req.Price = &normalized
		}
	}
	if form.LeadTimeDays != "" && fieldErrors["leadTimeDays"] == "" {
		days, err := strconv.Atoi(form.LeadTimeDays)
		if err != nil || days < 0 {
			fieldErrors["leadTimeDays"] = "Prazo deve ser um número de dias não negativo"
		} else {
			req.LeadTimeDays = &days
		}
	}

	supplierID, _ := strconv.ParseInt(form.SupplierID, 10, 64)
	productID, _ := strconv.ParseInt(form.ProductID, 10, 64)

	if len(fieldErrors) > 0 {
		data, err := h.loadPage(r.Context(), supplierID)
		if err != nil {
			h.logger.Error("load link page", slog.Any("error", err))
			fieldErrors["general"] = "Erro ao carregar listas: " + err.Error()
		}
		data.Form = form
		for field, msg := range fieldErrors {
			data.Errors[field] = msg
		}
		h.render(w, r, data, http.StatusBadRequest)
		return
	}

	err := h.client.Link(r.Context(), supplierID, productID, req)
	switch {
	case err == nil:
		h.flash(r, "success", "Fornecedor associado com sucesso ao produto!")
	case catalog.IsDuplicateLink(err):
		h.flash(r, "warn", "Fornecedor já está associado a este produto!")
	default:
		h.logger.Error("link supplier to product", slog.Any("error", err),
			slog.Int64("supplier", supplierID), slog.Int64("product", productID))
		h.flash(r, "error", "Erro ao vincular: "+err.Error())
	}

	// Redirect back to the selection; the linked list is re-fetched
	// there instead of updated locally.
	http.Redirect(w, r, "/links?supplier="+strconv.FormatInt(supplierID, 10), http.StatusSeeOther)
}

// Unlink removes one association and redirects back to the selection.
func (h *Handler) Unlink(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	supplierID, err := strconv.ParseInt(r.PostFormValue("supplier"), 10, 64)
	if err != nil || supplierID <= 0 {
		http.Error(w, "Invalid supplier ID", http.StatusBadRequest)
		return
	}

	if err := h.client.Unlink(r.Context(), supplierID, productID); err != nil {
		h.logger.Error("unlink supplier from product", slog.Any("error", err),
			slog.Int64("supplier", supplierID), slog.Int64("product", productID))
		h.flash(r, "error", "Erro ao desassociar: "+err.Error())
	} else {
		h.flash(r, "success", "Fornecedor desassociado com sucesso!")
	}

	http.Redirect(w, r, "/links?supplier="+strconv.FormatInt(supplierID, 10), http.StatusSeeOther)
}

func (h *Handler) loadPage(ctx context.Context, supplierID int64) (pageData, error) {
	data := pageData{Errors: map[string]string{}, SelectedSupplier: supplierID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		suppliers, err := h.client.ListSuppliers(gctx)
		data.Suppliers = suppliers
		return err
	})
	g.Go(func() error {
		products, err := h.client.ListProducts(gctx)
		data.Products = products
		return err
	})
	if err := g.Wait(); err != nil {
		return data, err
	}

	if supplierID > 0 {
		data.SupplierChosen = true
		res, err := h.client.SupplierProducts(ctx, supplierID)
		if err != nil {
			return data, err
		}
		data.Linked = res.Products
	}
	return data, nil
}

func (h *Handler) flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Associações",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/links.html", viewData); err != nil {
		h.logger.Error("render links page", slog.Any("error", err))
	}
}
