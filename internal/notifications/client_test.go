package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendNotificationPostsToTopic(t *testing.T) {
	var gotPath, gotTitle, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bulk-import", true)
	if err := client.NotifyImportComplete(context.Background(), 250, 240, 238); err != nil {
		t.Fatalf("NotifyImportComplete failed: %v", err)
	}

	if gotPath != "/bulk-import" {
		t.Errorf("Expected topic path /bulk-import, got %q", gotPath)
	}
	if gotTitle != "Bulk import finished" {
		t.Errorf("Title: got %q", gotTitle)
	}
	expected := "Parsed 250 rows (240 usable), filled 238 listing rows."
	if gotBody != expected {
		t.Errorf("Body: expected %q, got %q", expected, gotBody)
	}
}

func TestSendNotificationDisabledIsNoOp(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "bulk-import", false)
	if err := client.SendNotification(context.Background(), "t", "m"); err != nil {
		t.Fatalf("Disabled client must not error, got %v", err)
	}
	if called {
		t.Error("Disabled client must not hit the server")
	}
}

func TestSendNotificationServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bulk-import", true)
	if err := client.SendNotification(context.Background(), "t", "m"); err == nil {
		t.Error("Expected error for 500 response")
	}
}
