package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TinoSanchez/app-achatrevente/internal/importexport"
	"github.com/TinoSanchez/app-achatrevente/internal/records"
)

func newTestPorter(t *testing.T, store records.Store) *importexport.Service {
	t.Helper()
	svc, err := importexport.NewService(store)
	if err != nil {
		t.Fatalf("create import/export service: %v", err)
	}
	return svc
}

func TestExportRecordsCSVHeaders(t *testing.T) {
	store := newTestStore(t)
	createTestRecord(t, store, `{"nom":"Chaise","quantite":2,"prixAchat":10,"prixVente":25,"frais":1.5}`)
	svc := newTestPorter(t, store)

	resp := httptest.NewRecorder()
	ExportRecords(svc, nil).ServeHTTP(resp, ownedRequest(http.MethodGet, "/api/v1/records/export?format=csv", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") || !strings.Contains(got, ".csv") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !strings.Contains(resp.Body.String(), `"Chaise"`) {
		t.Fatalf("expected quoted record in body: %s", resp.Body.String())
	}
}

func TestExportRecordsUnknownFormat(t *testing.T) {
	svc := newTestPorter(t, newTestStore(t))

	resp := httptest.NewRecorder()
	ExportRecords(svc, nil).ServeHTTP(resp, ownedRequest(http.MethodGet, "/api/v1/records/export?format=xml", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestImportRecordsJSON(t *testing.T) {
	store := newTestStore(t)
	svc := newTestPorter(t, store)

	body := `[{"nom":"Lampe","quantite":1,"prixAchat":5,"prixVente":12}]`
	req := ownedRequest(http.MethodPost, "/api/v1/records/import", body)
	resp := httptest.NewRecorder()

	ImportRecords(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Created int `json:"created"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Created != 1 {
		t.Fatalf("expected 1 created got %d", envelope.Data.Created)
	}
}

func TestImportRecordsMalformedCSVAborts(t *testing.T) {
	store := newTestStore(t)
	svc := newTestPorter(t, store)

	body := "\"nom\"\r\n\"unterminated"
	req := ownedRequest(http.MethodPost, "/api/v1/records/import?format=csv", body)
	req.Header.Set("Content-Type", "text/csv")
	resp := httptest.NewRecorder()

	ImportRecords(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	all := httptest.NewRecorder()
	ListRecords(store, nil).ServeHTTP(all, ownedRequest(http.MethodGet, "/api/v1/records", ""))
	var envelope struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(all.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if envelope.Data.Total != 0 {
		t.Fatalf("expected no partial import, got %d records", envelope.Data.Total)
	}
}
