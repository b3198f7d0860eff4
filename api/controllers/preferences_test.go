package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/TinoSanchez/app-achatrevente/internal/prefs"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestPrefStore(t *testing.T) prefs.Store {
	t.Helper()
	local, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	store, err := prefs.NewLocalStore(local)
	if err != nil {
		t.Fatalf("create pref store: %v", err)
	}
	return store
}

func TestGetPreferencesReturnsDefaults(t *testing.T) {
	store := newTestPrefStore(t)

	resp := httptest.NewRecorder()
	GetPreferences(store, nil).ServeHTTP(resp, ownedRequest(http.MethodGet, "/api/v1/preferences", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data prefs.Preferences `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SKUPrefix != "P" || envelope.Data.SKUCounter != 1 {
		t.Fatalf("expected defaults, got %+v", envelope.Data)
	}
	if !envelope.Data.MonthlyGoal.Equal(dec("500")) {
		t.Fatalf("expected monthly goal 500, got %s", envelope.Data.MonthlyGoal)
	}
}

func TestSavePreferencesMergesPatch(t *testing.T) {
	store := newTestPrefStore(t)

	body := `{"darkMode":true,"skuPrefix":"LOT"}`
	resp := httptest.NewRecorder()
	SavePreferences(store, nil, nil).ServeHTTP(resp, ownedRequest(http.MethodPut, "/api/v1/preferences", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data prefs.Preferences `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.DarkMode || envelope.Data.SKUPrefix != "LOT" {
		t.Fatalf("patch not applied: %+v", envelope.Data)
	}
	if !envelope.Data.MonthlyGoal.Equal(dec("500")) {
		t.Fatalf("untouched field lost: %+v", envelope.Data)
	}
}

func TestClearPreferencesResets(t *testing.T) {
	store := newTestPrefStore(t)

	put := httptest.NewRecorder()
	SavePreferences(store, nil, nil).ServeHTTP(put, ownedRequest(http.MethodPut, "/api/v1/preferences", `{"skuPrefix":"LOT"}`))
	if put.Code != http.StatusOK {
		t.Fatalf("save failed: %d", put.Code)
	}

	resp := httptest.NewRecorder()
	ClearPreferences(store, nil).ServeHTTP(resp, ownedRequest(http.MethodDelete, "/api/v1/preferences", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	get := httptest.NewRecorder()
	GetPreferences(store, nil).ServeHTTP(get, ownedRequest(http.MethodGet, "/api/v1/preferences", ""))
	var envelope struct {
		Data prefs.Preferences `json:"data"`
	}
	if err := json.NewDecoder(get.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SKUPrefix != "P" {
		t.Fatalf("expected defaults after clear, got %+v", envelope.Data)
	}
}
