package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/imovia/imovia-go/internal/domain"
	apperrors "github.com/imovia/imovia-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeScraper struct {
	result *domain.ScrapeResult
	err    error
	calls  int
}

func (f *fakeScraper) Scrape(_ context.Context, _ string) (*domain.ScrapeResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeGenerator struct {
	content *domain.LandingPageContent
	err     error
	calls   int
}

func (f *fakeGenerator) GenerateStructuredPage(_ context.Context, _, _ string) (*domain.LandingPageContent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	clone := *f.content
	return &clone, nil
}

type fakeRehoster struct {
	failFor map[string]bool
	slots   []string
}

func (f *fakeRehoster) Rehost(_ context.Context, imageURL, prefix, slot string) (string, error) {
	f.slots = append(f.slots, slot)
	if f.failFor[imageURL] {
		return "", errors.New("download refused")
	}
	return "https://cdn.imovia.com.br/" + strings.Trim(prefix, "/") + "/" + slot + ".jpg", nil
}

type fakeJobStore struct {
	steps      map[domain.JobStep][]byte
	processing []string
	completed  map[string]string
	failed     map[string]string
	markErr    error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		steps:     map[domain.JobStep][]byte{},
		completed: map[string]string{},
		failed:    map[string]string{},
	}
}

func (f *fakeJobStore) MarkProcessing(_ context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.processing = append(f.processing, id)
	return nil
}

func (f *fakeJobStore) MarkCompleted(_ context.Context, id, pageID string) error {
	f.completed[id] = pageID
	return nil
}

func (f *fakeJobStore) MarkFailed(_ context.Context, id, message string) error {
	f.failed[id] = message
	return nil
}

func (f *fakeJobStore) SaveStepOutput(_ context.Context, _ string, step domain.JobStep, output []byte) error {
	f.steps[step] = output
	return nil
}

func (f *fakeJobStore) GetStepOutput(_ context.Context, _ string, step domain.JobStep) ([]byte, error) {
	return f.steps[step], nil
}

type fakePageStore struct {
	pages []*domain.LandingPage
	err   error
}

func (f *fakePageStore) Insert(_ context.Context, page *domain.LandingPage) error {
	if f.err != nil {
		return f.err
	}
	f.pages = append(f.pages, page)
	return nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetDefault(_ context.Context, key, fallback string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return fallback
}

func sampleContent() *domain.LandingPageContent {
	return &domain.LandingPageContent{
		Title: "Residencial Mar Azul",
		Hero: domain.HeroSection{
			Headline: "Viva de frente para o mar",
			ImageURL: "https://example.com/hero.jpg",
		},
		GalleryImages: []string{
			"https://example.com/a.jpg",
			"https://example.com/b.jpg",
		},
	}
}

func newTestPipeline(scraper *fakeScraper, gen *fakeGenerator, rehoster *fakeRehoster, jobs *fakeJobStore, pages *fakePageStore) *Pipeline {
	return NewPipeline(scraper, gen, rehoster, jobs, pages, &fakeSettings{}, zap.NewNop())
}

func TestRunCompletesAndRewritesImages(t *testing.T) {
	scraper := &fakeScraper{result: &domain.ScrapeResult{HTML: "<body>casa</body>"}}
	gen := &fakeGenerator{content: sampleContent()}
	rehoster := &fakeRehoster{}
	jobs := newFakeJobStore()
	pages := &fakePageStore{}

	job := &domain.CloningJob{ID: "job-1", SourceURL: "https://example.com/imovel"}
	if err := newTestPipeline(scraper, gen, rehoster, jobs, pages).Run(context.Background(), job); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(pages.pages) != 1 {
		t.Fatalf("expected one persisted page, got %d", len(pages.pages))
	}
	page := pages.pages[0]
	if page.Content.Hero.ImageURL != "https://cdn.imovia.com.br/landing-pages/job-1/hero.jpg" {
		t.Fatalf("hero image not rewritten: %q", page.Content.Hero.ImageURL)
	}
	for i, url := range page.Content.GalleryImages {
		if !strings.HasPrefix(url, "https://cdn.imovia.com.br/") {
			t.Fatalf("gallery image %d not rewritten: %q", i, url)
		}
	}
	if page.Slug == "" || !strings.HasPrefix(page.Slug, "residencial-mar-azul") {
		t.Fatalf("unexpected slug: %q", page.Slug)
	}
	if jobs.completed["job-1"] != page.ID {
		t.Fatalf("job not marked completed with page ID, got %q", jobs.completed["job-1"])
	}
	if got := rehoster.slots; len(got) != 3 || got[0] != "hero" || got[1] != "0" || got[2] != "1" {
		t.Fatalf("unexpected rehost slots: %v", got)
	}
}

func TestRunKeepsOriginalURLWhenRehostFails(t *testing.T) {
	content := sampleContent()
	rehoster := &fakeRehoster{failFor: map[string]bool{"https://example.com/b.jpg": true}}
	jobs := newFakeJobStore()
	pages := &fakePageStore{}

	job := &domain.CloningJob{ID: "job-2", SourceURL: "https://example.com"}
	p := newTestPipeline(&fakeScraper{result: &domain.ScrapeResult{HTML: "x"}}, &fakeGenerator{content: content}, rehoster, jobs, pages)
	if err := p.Run(context.Background(), job); err != nil {
		t.Fatalf("rehost failure must not fail the job: %v", err)
	}

	page := pages.pages[0]
	if !strings.HasPrefix(page.Content.GalleryImages[0], "https://cdn.imovia.com.br/") {
		t.Fatalf("first gallery image should be rewritten: %q", page.Content.GalleryImages[0])
	}
	if page.Content.GalleryImages[1] != "https://example.com/b.jpg" {
		t.Fatalf("failed image should keep original URL: %q", page.Content.GalleryImages[1])
	}
}

func TestRunSkipsNonHTTPImageURLs(t *testing.T) {
	content := sampleContent()
	content.Hero.ImageURL = "data:image/png;base64,AAAA"
	content.GalleryImages = []string{"/relative/img.jpg", "https://example.com/a.jpg"}
	rehoster := &fakeRehoster{}
	pages := &fakePageStore{}

	job := &domain.CloningJob{ID: "job-3", SourceURL: "https://example.com"}
	p := newTestPipeline(&fakeScraper{result: &domain.ScrapeResult{HTML: "x"}}, &fakeGenerator{content: content}, rehoster, newFakeJobStore(), pages)
	if err := p.Run(context.Background(), job); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(rehoster.slots) != 1 || rehoster.slots[0] != "0" {
		t.Fatalf("only the absolute gallery URL should be rehosted, got slots %v", rehoster.slots)
	}
	page := pages.pages[0]
	if page.Content.Hero.ImageURL != "data:image/png;base64,AAAA" {
		t.Fatalf("data URL must be left alone: %q", page.Content.Hero.ImageURL)
	}
}

func TestRunDefaultsEmptyTitle(t *testing.T) {
	content := sampleContent()
	content.Title = "   "
	pages := &fakePageStore{}

	job := &domain.CloningJob{ID: "job-4", SourceURL: "https://example.com"}
	p := newTestPipeline(&fakeScraper{result: &domain.ScrapeResult{HTML: "x"}}, &fakeGenerator{content: content}, &fakeRehoster{}, newFakeJobStore(), pages)
	if err := p.Run(context.Background(), job); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	page := pages.pages[0]
	if page.Title != DefaultPageTitle {
		t.Fatalf("expected default title, got %q", page.Title)
	}
	if page.Slug == "" {
		t.Fatal("slug must never be empty")
	}
}

func TestRunResumesFromRecordedStep(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("scraper must not be called")}
	jobs := newFakeJobStore()

	recorded, _ := json.Marshal(&domain.ScrapeResult{HTML: "<body>recorded</body>"})
	jobs.steps[domain.StepScrape] = recorded

	gen := &fakeGenerator{content: sampleContent()}
	pages := &fakePageStore{}

	job := &domain.CloningJob{ID: "job-5", SourceURL: "https://example.com"}
	p := newTestPipeline(scraper, gen, &fakeRehoster{}, jobs, pages)
	if err := p.Run(context.Background(), job); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if scraper.calls != 0 {
		t.Fatalf("scrape step should have been skipped, called %d times", scraper.calls)
	}
	if len(pages.pages) != 1 {
		t.Fatal("pipeline should still persist the page")
	}
}

func TestRunMarksFailedOnScrapeError(t *testing.T) {
	jobs := newFakeJobStore()
	p := newTestPipeline(&fakeScraper{err: errors.New("unreachable host")}, &fakeGenerator{}, &fakeRehoster{}, jobs, &fakePageStore{})

	job := &domain.CloningJob{ID: "job-6", SourceURL: "https://example.com"}
	err := p.Run(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}

	var jobErr *apperrors.JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("expected JobError, got %T", err)
	}
	if msg := jobs.failed["job-6"]; !strings.Contains(msg, "unreachable host") {
		t.Fatalf("failure reason not recorded: %q", msg)
	}
}

func TestRunMarksFailedOnGenerateError(t *testing.T) {
	jobs := newFakeJobStore()
	p := newTestPipeline(
		&fakeScraper{result: &domain.ScrapeResult{HTML: "x"}},
		&fakeGenerator{err: errors.New("model unavailable")},
		&fakeRehoster{}, jobs, &fakePageStore{},
	)

	job := &domain.CloningJob{ID: "job-7", SourceURL: "https://example.com"}
	if err := p.Run(context.Background(), job); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := jobs.failed["job-7"]; !ok {
		t.Fatal("job should be marked failed")
	}
	if _, ok := jobs.completed["job-7"]; ok {
		t.Fatal("failed job must not be marked completed")
	}
}

func TestRunFailsWhenJobNotProcessable(t *testing.T) {
	jobs := newFakeJobStore()
	jobs.markErr = errors.New("job job-8 is not in a processable state")

	p := newTestPipeline(&fakeScraper{}, &fakeGenerator{}, &fakeRehoster{}, jobs, &fakePageStore{})
	if err := p.Run(context.Background(), &domain.CloningJob{ID: "job-8"}); err == nil {
		t.Fatal("expected error for terminal job")
	}
}

func TestRunUsesDefaultAgentWhenJobHasNone(t *testing.T) {
	pages := &fakePageStore{}
	p := NewPipeline(
		&fakeScraper{result: &domain.ScrapeResult{HTML: "x"}},
		&fakeGenerator{content: sampleContent()},
		&fakeRehoster{}, newFakeJobStore(), pages,
		&fakeSettings{values: map[string]string{"default_agent_id": "agent-42"}},
		zap.NewNop(),
	)

	if err := p.Run(context.Background(), &domain.CloningJob{ID: "job-9", SourceURL: "https://example.com"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if pages.pages[0].AgentID != "agent-42" {
		t.Fatalf("expected configured default agent, got %q", pages.pages[0].AgentID)
	}
}
