package e2e

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	ta := setupApp(t, true)

	resp, err := doRequest(ta.app, http.MethodGet, "/health", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["status"] != "ok" {
		t.Errorf("status = %v, want ok", result["status"])
	}

	services, ok := result["services"].(map[string]interface{})
	if !ok {
		t.Fatal("no services map in health response")
	}
	if services["provider"] != true {
		t.Errorf("services.provider = %v, want true", services["provider"])
	}
}
