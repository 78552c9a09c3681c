package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const longText = "The quick brown fox jumps over the lazy dog repeatedly while onlookers watch in amazement at the spectacle."

func TestSummarize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.MaxLength != 130 || req.MinLength != 30 {
			t.Errorf("Unexpected length bounds: max=%d min=%d", req.MaxLength, req.MinLength)
		}
		json.NewEncoder(w).Encode(summarizeResponse{Summary: "A fox jumps over a dog."})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	summary := client.Summarize(context.Background(), longText)
	if summary == nil {
		t.Fatal("Expected a summary")
	}
	if *summary != "A fox jumps over a dog." {
		t.Errorf("Unexpected summary: '%s'", *summary)
	}
}

func TestSummarize_ShortInput(t *testing.T) {
	client := NewClient("http://localhost:1")

	if got := client.Summarize(context.Background(), "too short"); got != nil {
		t.Error("Short input should yield a nil summary without calling the service")
	}
	if got := client.Summarize(context.Background(), ""); got != nil {
		t.Error("Empty input should yield a nil summary")
	}
}

func TestSummarize_Unconfigured(t *testing.T) {
	client := NewClient("")
	if client.Enabled() {
		t.Error("Client without an endpoint should be disabled")
	}
	if got := client.Summarize(context.Background(), longText); got != nil {
		t.Error("Unconfigured client should yield nil, not an error")
	}
}

func TestSummarize_ServiceFailureIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if got := client.Summarize(context.Background(), longText); got != nil {
		t.Error("Service failure must degrade to an absent summary")
	}
}

func TestSummarize_EmptySummaryIsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(summarizeResponse{Summary: ""})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if got := client.Summarize(context.Background(), longText); got != nil {
		t.Error("An empty summary from the service counts as absent")
	}
}

func TestContentExtractor_Run(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
	<nav>Menu items here</nav>
	<article>
		<h1>Test Article</h1>
		<p>This is the main content of the article. It contains several paragraphs of meaningful text that should survive extraction.</p>
		<p>A second paragraph adds more substance so the extraction has a clear main content area to identify.</p>
	</article>
	<footer>Copyright notice</footer>
</body>
</html>`

	extractor := NewContentExtractor()
	content, err := extractor.Run([]byte(html))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if content == "" {
		t.Error("Expected extracted text content")
	}
}

func TestContentExtractor_EmptyInput(t *testing.T) {
	extractor := NewContentExtractor()
	if _, err := extractor.Run(nil); err == nil {
		t.Error("Expected error for empty HTML data")
	}
}
