// Package scraper fetches an external landing page and reduces it to the
// material the cloning pipeline needs: title, description, image URLs and a
// cleaned HTML body.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/imovia/imovia-go/internal/domain"
	"github.com/imovia/imovia-go/internal/util"
	"go.uber.org/zap"
)

const (
	fetchTimeout = 30 * time.Second
	// Cleaned HTML is capped before it reaches the pipeline; the gateway
	// truncates again per provider.
	maxHTMLRunes  = 120000
	maxImageCount = 30
)

type Service struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func NewService(userAgent string, logger *zap.Logger) *Service {
	return &Service{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Scrape fetches sourceURL and returns its cleaned content. Script, style and
// iframe nodes are stripped before the HTML is returned.
func (s *Service) Scrape(ctx context.Context, sourceURL string) (*domain.ScrapeResult, error) {
	base, err := url.Parse(sourceURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid source URL %q", sourceURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	result := s.extract(doc, base)
	result.URL = sourceURL

	s.logger.Info("Page scraped",
		zap.String("url", sourceURL),
		zap.Int("images", len(result.Images)),
		zap.Int("html_size", len(result.HTML)),
	)

	return result, nil
}

func (s *Service) extract(doc *goquery.Document, base *url.URL) *domain.ScrapeResult {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if ogTitle, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists && strings.TrimSpace(ogTitle) != "" {
		title = strings.TrimSpace(ogTitle)
	}

	description, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if description == "" {
		description, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}
	description = strings.TrimSpace(description)

	images := s.collectImages(doc, base)

	doc.Find("script, style, iframe, noscript, svg").Remove()

	html, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(html) == "" {
		html, _ = doc.Html()
	}

	return &domain.ScrapeResult{
		Title:       title,
		Description: description,
		Images:      images,
		HTML:        util.TruncateRunes(strings.TrimSpace(html), maxHTMLRunes),
	}
}

func (s *Service) collectImages(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	images := make([]string, 0)

	add := func(raw string) {
		if len(images) >= maxImageCount {
			return
		}
		resolved := resolveImageURL(base, raw)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	}

	if ogImage, exists := doc.Find(`meta[property="og:image"]`).Attr("content"); exists {
		add(ogImage)
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, exists := sel.Attr("src")
		if !exists || src == "" {
			src, _ = sel.Attr("data-src")
		}
		add(src)
	})

	return images
}

func resolveImageURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	return resolved.String()
}
