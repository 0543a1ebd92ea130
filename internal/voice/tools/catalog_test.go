package tools

import (
	"encoding/json"
	"testing"

	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

func TestCatalogMatchesTables(t *testing.T) {
	cat, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Version != 1 {
		t.Fatalf("version=%d", cat.Version)
	}
	if len(cat.Tools) != 25 || len(session.Transitions) != 25 {
		t.Fatalf("catalog=%d transitions=%d", len(cat.Tools), len(session.Transitions))
	}
	d, err := NewDispatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	if len(d.handlers) != len(cat.Tools) {
		t.Fatalf("handlers=%d", len(d.handlers))
	}

	// Every schema must survive JSON encoding for the session.update frame.
	for _, tool := range cat.Tools {
		if tool.Description == "" {
			t.Fatalf("%s has no description", tool.Name)
		}
		if _, err := json.Marshal(tool.Parameters); err != nil {
			t.Fatalf("%s parameters not JSON-encodable: %v", tool.Name, err)
		}
		if tool.Parameters["type"] != "object" {
			t.Fatalf("%s parameters type=%v", tool.Name, tool.Parameters["type"])
		}
	}
	nav, _ := cat.Lookup("navigate_to_page")
	props := nav.Parameters["properties"].(map[string]any)
	page := props["page"].(map[string]any)
	if enum, _ := page["enum"].([]any); len(enum) != len(routes) {
		t.Fatalf("navigate enum=%v routes=%d", page["enum"], len(routes))
	}
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	raw := []byte("version: 1\ntools:\n  - name: a\n  - name: a\n")
	if _, err := parseCatalog(raw); err == nil {
		t.Fatalf("duplicate tool accepted")
	}
	if _, err := parseCatalog([]byte("tools: []\n")); err == nil {
		t.Fatalf("missing version accepted")
	}
}
