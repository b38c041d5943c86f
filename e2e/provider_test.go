package e2e

import (
	"net/http"
	"testing"
)

func TestProviderGet(t *testing.T) {
	ta := setupApp(t, true)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/provider", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["provider"] != "openai" {
		t.Errorf("provider = %v, want openai", result["provider"])
	}
	// No API keys in the test config, so nothing is switchable.
	if avail, ok := result["availableProviders"].([]interface{}); ok && len(avail) != 0 {
		t.Errorf("availableProviders = %v, want empty", avail)
	}
}

func TestProviderSet_Unconfigured(t *testing.T) {
	ta := setupApp(t, true)

	// No credentials configured, so the swap must be rejected and the
	// active provider kept.
	resp, err := doRequest(ta.app, http.MethodPost, "/api/provider", `{"provider": "anthropic"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	if got := ta.orch.Provider(); got != "openai" {
		t.Errorf("active provider = %q after failed swap, want openai", got)
	}
}

func TestProviderSet_UnknownName(t *testing.T) {
	ta := setupApp(t, true)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/provider", `{"provider": "bard"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("error code = %v, want VALIDATION_ERROR", errObj["code"])
	}
}
