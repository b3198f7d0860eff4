package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/TinoSanchez/app-achatrevente/api/middleware"
	"github.com/TinoSanchez/app-achatrevente/internal/records"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
)

const testOwner = "owner-1"

func newTestStore(t *testing.T) *records.LocalStore {
	t.Helper()
	local, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	store, err := records.NewLocalStore(local)
	if err != nil {
		t.Fatalf("create record store: %v", err)
	}
	return store
}

func ownedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithOwnerID(req.Context(), testOwner))
}

func createTestRecord(t *testing.T, store records.Store, body string) string {
	t.Helper()
	resp := httptest.NewRecorder()
	CreateRecord(store, nil).ServeHTTP(resp, ownedRequest(http.MethodPost, "/api/v1/records", body))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return envelope.Data.ID
}

func TestCreateRecordComputesMargins(t *testing.T) {
	store := newTestStore(t)

	resp := httptest.NewRecorder()
	body := `{"nom":"Chaise vintage","quantite":2,"prixAchat":10,"prixVente":25,"frais":1.5}`
	CreateRecord(store, nil).ServeHTTP(resp, ownedRequest(http.MethodPost, "/api/v1/records", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Nom              string          `json:"nom"`
			Statut           string          `json:"statut"`
			BeneficeUnitaire json.RawMessage `json:"beneficeUnitaire"`
			BeneficeTotal    json.RawMessage `json:"beneficeTotal"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Nom != "Chaise vintage" {
		t.Fatalf("unexpected nom %q", envelope.Data.Nom)
	}
	if envelope.Data.Statut != "En ligne" {
		t.Fatalf("expected default statut, got %q", envelope.Data.Statut)
	}
	if got := string(envelope.Data.BeneficeUnitaire); got != "13.5" {
		t.Fatalf("expected beneficeUnitaire 13.5 got %s", got)
	}
	if got := string(envelope.Data.BeneficeTotal); got != "27" {
		t.Fatalf("expected beneficeTotal 27 got %s", got)
	}
}

func TestCreateRecordRejectsMissingName(t *testing.T) {
	store := newTestStore(t)

	resp := httptest.NewRecorder()
	CreateRecord(store, nil).ServeHTTP(resp, ownedRequest(http.MethodPost, "/api/v1/records", `{"quantite":1}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateRecordRequiresOwner(t *testing.T) {
	store := newTestStore(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(`{"nom":"x"}`))
	resp := httptest.NewRecorder()
	CreateRecord(store, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListRecordsFiltersAndPaginates(t *testing.T) {
	store := newTestStore(t)
	createTestRecord(t, store, `{"nom":"Chaise","categorie":"Mobilier"}`)
	createTestRecord(t, store, `{"nom":"Lampe","categorie":"Luminaire"}`)
	createTestRecord(t, store, `{"nom":"Tabouret","categorie":"Mobilier"}`)

	resp := httptest.NewRecorder()
	ListRecords(store, nil).ServeHTTP(resp, ownedRequest(http.MethodGet, "/api/v1/records?categorie=Mobilier&sortBy=nom&page=1&perPage=5", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Records []struct {
				Nom string `json:"nom"`
			} `json:"records"`
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != 2 {
		t.Fatalf("expected 2 results got %d", envelope.Data.Total)
	}
	if envelope.Data.Records[0].Nom != "Chaise" || envelope.Data.Records[1].Nom != "Tabouret" {
		t.Fatalf("unexpected order: %+v", envelope.Data.Records)
	}
}

func TestUpdateRecordNotFound(t *testing.T) {
	store := newTestStore(t)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "999")
	req := ownedRequest(http.MethodPut, "/api/v1/records/999", `{"nom":"Chaise"}`)
	req = req.WithContext(contextWithRoute(req, rctx))

	resp := httptest.NewRecorder()
	UpdateRecord(store, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDeleteRecordIdempotent(t *testing.T) {
	store := newTestStore(t)
	id := createTestRecord(t, store, `{"nom":"Chaise"}`)

	for i := 0; i < 2; i++ {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req := ownedRequest(http.MethodDelete, "/api/v1/records/"+id, "")
		req = req.WithContext(contextWithRoute(req, rctx))

		resp := httptest.NewRecorder()
		DeleteRecord(store, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("delete attempt %d: expected 200 got %d", i, resp.Code)
		}
	}
}

func TestResolveRecordReturnsCanonicalAddress(t *testing.T) {
	store := newTestStore(t)
	id := createTestRecord(t, store, `{"nom":"Miroir"}`)

	resp := httptest.NewRecorder()
	target := "/api/v1/records/resolve?fragment=" + "https%3A%2F%2Fapp.example%2Finventaire%23product%3D" + id
	ResolveRecord(store, nil).ServeHTTP(resp, ownedRequest(http.MethodGet, target, ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Record struct {
				Nom string `json:"nom"`
			} `json:"record"`
			Address string `json:"address"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Record.Nom != "Miroir" {
		t.Fatalf("unexpected record %+v", envelope.Data.Record)
	}
	if envelope.Data.Address != "https://app.example/inventaire" {
		t.Fatalf("unexpected address %q", envelope.Data.Address)
	}
}

func TestResolveRecordRejectsJunkFragment(t *testing.T) {
	store := newTestStore(t)

	resp := httptest.NewRecorder()
	ResolveRecord(store, nil).ServeHTTP(resp, ownedRequest(http.MethodGet, "/api/v1/records/resolve?fragment=garbage", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBulkDeleteRecords(t *testing.T) {
	store := newTestStore(t)
	first := createTestRecord(t, store, `{"nom":"Chaise"}`)
	second := createTestRecord(t, store, `{"nom":"Lampe"}`)

	body, _ := json.Marshal(map[string][]string{"ids": {first, second, "missing"}})
	resp := httptest.NewRecorder()
	BulkDeleteRecords(store, nil).ServeHTTP(resp, ownedRequest(http.MethodPost, "/api/v1/records/bulk-delete", string(body)))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	listResp := httptest.NewRecorder()
	ListRecords(store, nil).ServeHTTP(listResp, ownedRequest(http.MethodGet, "/api/v1/records", ""))
	var envelope struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if envelope.Data.Total != 0 {
		t.Fatalf("expected empty inventory got %d", envelope.Data.Total)
	}
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
