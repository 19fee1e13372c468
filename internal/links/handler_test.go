package links_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/stockroom-app/stockroom/internal/catalog"
	"github.com/stockroom-app/stockroom/internal/links"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// fakeLinks emulates the catalog service's link endpoints with an
// in-memory association set keyed by supplier and product.
type fakeLinks struct {
	mu       sync.Mutex
	linked   map[[2]int64]map[string]any
	requests []string
}

func newFakeLinks() *fakeLinks {
	return &fakeLinks{linked: map[[2]int64]map[string]any{}}
}

func (f *fakeLinks) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers":
		_, _ = w.Write([]byte(`[{"id":1,"name":"Distribuidora Sul","cnpj":"12.345.678/0001-95"}]`))
	case r.Method == http.MethodGet && r.URL.Path == "/products":
		_, _ = w.Write([]byte(`[{"id":2,"name":"Café Torrado","price":"12.50","quantity":3,"category":"Alimentos"}]`))
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers/1/products":
		rows := make([]map[string]any, 0, len(f.linked))
		for key, attrs := range f.linked {
			if key[0] != 1 {
				continue
			}
			row := map[string]any{"id": key[1], "name": "Café Torrado"}
			for k, v := range attrs {
				row[k] = v
			}
			rows = append(rows, row)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"supplier": map[string]any{"id": 1, "name": "Distribuidora Sul"},
			"products": rows,
		})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/suppliers/1/products/"):
		key := [2]int64{1, 2}
		if _, exists := f.linked[key]; exists {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"Fornecedor já está associado a este produto"}`))
			return
		}
		var attrs map[string]any
		_ = json.NewDecoder(r.Body).Decode(&attrs)
		if attrs == nil {
			attrs = map[string]any{}
		}
		attrs["linkCreatedAt"] = "2026-02-01T09:00:00Z"
		if price, ok := attrs["price"]; ok {
			attrs["negotiatedPrice"] = price
		}
		f.linked[key] = attrs
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/suppliers/1/products/"):
		delete(f.linked, [2]int64{1, 2})
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeLinks) sawRequest(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if strings.HasPrefix(req, prefix) {
			return true
		}
	}
	return false
}

func newRouter(t *testing.T, backend http.Handler) (http.Handler, *shared.SessionManager) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")

	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := catalog.NewClient(srv.URL, 5*time.Second)
	handler := links.NewHandler(logger, client, templates, csrfManager)

	router := chi.NewRouter()
	router.Route("/links", handler.MountRoutes)
	return router, sessionManager
}

func serve(t *testing.T, router http.Handler, sm *shared.SessionManager, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res, sess
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPageWithoutSelectionSkipsLinkedFetch(t *testing.T) {
	backend := newFakeLinks()
	router, sm := newRouter(t, backend)

	res, _ := serve(t, router, sm, httptest.NewRequest(http.MethodGet, "/links", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Selecione um fornecedor para ver os produtos vinculados.") {
		t.Fatalf("expected selection hint")
	}
	if backend.sawRequest("GET /suppliers/1/products") {
		t.Fatalf("linked-products fetch must not happen without a selection")
	}
}

func TestPageWithSelectionShowsLinkedProducts(t *testing.T) {
	backend := newFakeLinks()
	backend.linked[[2]int64{1, 2}] = map[string]any{"negotiatedPrice": "10.50", "leadTimeDays": 7}
	router, sm := newRouter(t, backend)

	res, _ := serve(t, router, sm, httptest.NewRequest(http.MethodGet, "/links?supplier=1", nil))

	body := res.Body.String()
	if !strings.Contains(body, "Café Torrado") {
		t.Fatalf("expected linked product row")
	}
	if !strings.Contains(body, "R$ 10,50") {
		t.Fatalf("expected formatted negotiated price, got: %s", body)
	}
}

func TestLinkRequiresSupplierAndProduct(t *testing.T) {
	backend := newFakeLinks()
	router, sm := newRouter(t, backend)

	form := url.Values{}
	form.Set("supplier", "")
	form.Set("product", "")
	res, _ := serve(t, router, sm, postForm("/links", form))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Escolha um fornecedor") || !strings.Contains(body, "Escolha um produto") {
		t.Fatalf("expected selection errors in body")
	}
	if backend.sawRequest("POST ") {
		t.Fatalf("no link request may leave before both choices are made")
	}
}

func TestLinkSuccessThenDuplicateConflict(t *testing.T) {
	backend := newFakeLinks()
	router, sm := newRouter(t, backend)

	form := url.Values{}
	form.Set("supplier", "1")
	form.Set("product", "2")
	form.Set("price", "10,50")
	form.Set("leadTimeDays", "7")

	res, sess := serve(t, router, sm, postForm("/links", form))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/links?supplier=1" {
		t.Fatalf("expected redirect back to selection, got %q", loc)
	}
	flash := sess.PopFlash()
	if flash == nil || flash.Kind != "success" {
		t.Fatalf("expected success flash, got %+v", flash)
	}

	// Linking the same pair again is a distinct warning, not an error.
	res, sess = serve(t, router, sm, postForm("/links", form))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect on duplicate, got %d", res.Code)
	}
	flash = sess.PopFlash()
	if flash == nil || flash.Kind != "warn" {
		t.Fatalf("expected warn flash for duplicate link, got %+v", flash)
	}
	if !strings.Contains(flash.Message, "já está associado") {
		t.Fatalf("expected duplicate message, got %q", flash.Message)
	}

	// The re-fetched list still holds a single row for the pair.
	listRes, _ := serve(t, router, sm, httptest.NewRequest(http.MethodGet, "/links?supplier=1", nil))
	if got := strings.Count(listRes.Body.String(), "Café Torrado"); got != 2 {
		// One occurrence in the product pick list, one in the linked table.
		t.Fatalf("expected exactly one linked row, found %d occurrences", got)
	}
}

func TestLinkOmitsEmptyOptionalFields(t *testing.T) {
	backend := newFakeLinks()
	router, sm := newRouter(t, backend)

	form := url.Values{}
	form.Set("supplier", "1")
	form.Set("product", "2")
	res, _ := serve(t, router, sm, postForm("/links", form))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}

	backend.mu.Lock()
	attrs := backend.linked[[2]int64{1, 2}]
	backend.mu.Unlock()
	if _, ok := attrs["price"]; ok {
		t.Fatalf("empty price must not be sent")
	}
	if _, ok := attrs["leadTimeDays"]; ok {
		t.Fatalf("empty lead time must not be sent")
	}
}

func TestUnlinkRemovesAssociation(t *testing.T) {
	backend := newFakeLinks()
	backend.linked[[2]int64{1, 2}] = map[string]any{"negotiatedPrice": "10.50"}
	router, sm := newRouter(t, backend)

	form := url.Values{}
	form.Set("supplier", "1")
	res, sess := serve(t, router, sm, postForm("/links/2/delete", form))

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	flash := sess.PopFlash()
	if flash == nil || flash.Kind != "success" {
		t.Fatalf("expected success flash, got %+v", flash)
	}
	if !backend.sawRequest("DELETE /suppliers/1/products/2") {
		t.Fatalf("expected unlink request against the catalog service")
	}

	listRes, _ := serve(t, router, sm, httptest.NewRequest(http.MethodGet, "/links?supplier=1", nil))
	if !strings.Contains(listRes.Body.String(), "Nenhum produto vinculado para este fornecedor.") {
		t.Fatalf("expected empty linked list after unlink")
	}
}
