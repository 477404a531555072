package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Residencial Vista Mar</title>
	<meta name="description" content="Apartamentos de 3 suítes na Praia Brava">
	<meta property="og:image" content="/images/hero.jpg">
	<style>.hero { color: red; }</style>
</head>
<body>
	<h1>Residencial Vista Mar</h1>
	<script>window.track()</script>
	<iframe src="https://maps.example.com/embed"></iframe>
	<img src="https://cdn.example.com/a.jpg">
	<img src="/images/b.jpg">
	<img src="data:image/png;base64,AAAA">
	<img src="https://cdn.example.com/a.jpg">
	<p>Viva de frente para o mar.</p>
</body>
</html>`

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "ImoviaCloner/test" {
			t.Errorf("unexpected User-Agent: %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	t.Cleanup(server.Close)
	return NewService("ImoviaCloner/test", zap.NewNop()), server
}

func TestScrapeExtractsMetadataAndImages(t *testing.T) {
	svc, server := newTestService(t)

	result, err := svc.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Title != "Residencial Vista Mar" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
	if result.Description != "Apartamentos de 3 suítes na Praia Brava" {
		t.Fatalf("unexpected description: %q", result.Description)
	}

	// og:image resolved against the page URL, absolute kept, relative
	// resolved, data: and duplicates dropped.
	if len(result.Images) != 3 {
		t.Fatalf("expected 3 images, got %v", result.Images)
	}
	if result.Images[0] != server.URL+"/images/hero.jpg" {
		t.Fatalf("unexpected og:image resolution: %q", result.Images[0])
	}
	if result.Images[1] != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected image: %q", result.Images[1])
	}
	if result.Images[2] != server.URL+"/images/b.jpg" {
		t.Fatalf("unexpected relative resolution: %q", result.Images[2])
	}
}

func TestScrapeStripsScriptStyleIframe(t *testing.T) {
	svc, server := newTestService(t)

	result, err := svc.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, forbidden := range []string{"window.track", "maps.example.com", ".hero { color"} {
		if strings.Contains(result.HTML, forbidden) {
			t.Fatalf("expected %q to be stripped from HTML", forbidden)
		}
	}
	if !strings.Contains(result.HTML, "Viva de frente para o mar.") {
		t.Fatal("expected body text to survive")
	}
}

func TestScrapeRejectsInvalidURL(t *testing.T) {
	svc := NewService("ImoviaCloner/test", zap.NewNop())

	if _, err := svc.Scrape(context.Background(), "ftp://example.com"); err == nil {
		t.Fatal("expected error for non-http URL")
	}
}

func TestScrapeRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewService("ImoviaCloner/test", zap.NewNop())
	if _, err := svc.Scrape(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
