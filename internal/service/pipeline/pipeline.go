// Package pipeline runs the landing-page cloning job: scrape the source page,
// restructure it through the AI gateway, rehost external images and persist
// the finished page. Each step's output is recorded so a job resumes from the
// first incomplete step instead of re-running its predecessors.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/imovia/imovia-go/internal/domain"
	"github.com/imovia/imovia-go/internal/util"
	apperrors "github.com/imovia/imovia-go/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPageTitle replaces an empty AI-generated title before slugifying;
// a job must never produce an unslugifiable empty identifier.
const DefaultPageTitle = "Novo Empreendimento"

const defaultAgentID = "sofia"

type Scraper interface {
	Scrape(ctx context.Context, sourceURL string) (*domain.ScrapeResult, error)
}

type Generator interface {
	GenerateStructuredPage(ctx context.Context, rawHTML, customInstruction string) (*domain.LandingPageContent, error)
}

type Rehoster interface {
	Rehost(ctx context.Context, imageURL, prefix, slot string) (string, error)
}

// JobStore persists job state transitions and step outputs.
type JobStore interface {
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, pageID string) error
	MarkFailed(ctx context.Context, id, message string) error
	SaveStepOutput(ctx context.Context, jobID string, step domain.JobStep, output []byte) error
	GetStepOutput(ctx context.Context, jobID string, step domain.JobStep) ([]byte, error)
}

type PageStore interface {
	Insert(ctx context.Context, page *domain.LandingPage) error
}

// Settings resolves the default agent assigned to pages whose job names none.
type Settings interface {
	GetDefault(ctx context.Context, key, fallback string) string
}

type Pipeline struct {
	scraper  Scraper
	gateway  Generator
	rehoster Rehoster
	jobs     JobStore
	pages    PageStore
	settings Settings
	logger   *zap.Logger
}

func NewPipeline(scraper Scraper, gateway Generator, rehoster Rehoster, jobs JobStore, pages PageStore, settings Settings, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		scraper:  scraper,
		gateway:  gateway,
		rehoster: rehoster,
		jobs:     jobs,
		pages:    pages,
		settings: settings,
		logger:   logger,
	}
}

// persistResult is the recorded output of the persist step.
type persistResult struct {
	PageID string `json:"page_id"`
	Slug   string `json:"slug"`
}

// Run executes the job from its first incomplete step. Any step error marks
// the job failed and is returned; rehosting failures are absorbed per image.
func (p *Pipeline) Run(ctx context.Context, job *domain.CloningJob) error {
	logger := p.logger.With(zap.String("job_id", job.ID), zap.String("source_url", job.SourceURL))

	if err := p.jobs.MarkProcessing(ctx, job.ID); err != nil {
		return p.fail(ctx, logger, job.ID, "mark_processing", err)
	}

	var scraped domain.ScrapeResult
	err := p.step(ctx, job.ID, domain.StepScrape, &scraped, func() (any, error) {
		return p.scraper.Scrape(ctx, job.SourceURL)
	})
	if err != nil {
		return p.fail(ctx, logger, job.ID, string(domain.StepScrape), err)
	}

	var content domain.LandingPageContent
	err = p.step(ctx, job.ID, domain.StepGenerate, &content, func() (any, error) {
		return p.gateway.GenerateStructuredPage(ctx, scraped.HTML, job.CustomInstruction)
	})
	if err != nil {
		return p.fail(ctx, logger, job.ID, string(domain.StepGenerate), err)
	}

	err = p.step(ctx, job.ID, domain.StepRehost, &content, func() (any, error) {
		p.rehostImages(ctx, logger, job.ID, &content)
		return &content, nil
	})
	if err != nil {
		return p.fail(ctx, logger, job.ID, string(domain.StepRehost), err)
	}

	var persisted persistResult
	err = p.step(ctx, job.ID, domain.StepPersist, &persisted, func() (any, error) {
		return p.persist(ctx, job, &content)
	})
	if err != nil {
		return p.fail(ctx, logger, job.ID, string(domain.StepPersist), err)
	}

	if err := p.jobs.MarkCompleted(ctx, job.ID, persisted.PageID); err != nil {
		return p.fail(ctx, logger, job.ID, "mark_completed", err)
	}

	logger.Info("Cloning job completed",
		zap.String("page_id", persisted.PageID),
		zap.String("slug", persisted.Slug),
	)

	return nil
}

// step runs fn unless an output for it is already recorded, in which case the
// recorded output is loaded into dest and fn is skipped.
func (p *Pipeline) step(ctx context.Context, jobID string, step domain.JobStep, dest any, fn func() (any, error)) error {
	recorded, err := p.jobs.GetStepOutput(ctx, jobID, step)
	if err != nil {
		return err
	}
	if recorded != nil {
		p.logger.Debug("Step output found, skipping execution",
			zap.String("job_id", jobID),
			zap.String("step", string(step)),
		)
		return json.Unmarshal(recorded, dest)
	}

	result, err := fn()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode %s output: %w", step, err)
	}
	if err := p.jobs.SaveStepOutput(ctx, jobID, step, encoded); err != nil {
		return err
	}

	return json.Unmarshal(encoded, dest)
}

// rehostImages rewrites every external image reference to a storage-hosted
// copy. A URL that fails to rehost keeps its original value; broken image
// rehosting must not block publishing.
func (p *Pipeline) rehostImages(ctx context.Context, logger *zap.Logger, jobID string, content *domain.LandingPageContent) {
	prefix := "landing-pages/" + jobID

	if isExternalURL(content.Hero.ImageURL) {
		if hosted, err := p.rehoster.Rehost(ctx, content.Hero.ImageURL, prefix, "hero"); err != nil {
			logger.Warn("Hero image rehost failed, keeping original URL",
				zap.String("url", content.Hero.ImageURL),
				zap.Error(err),
			)
		} else {
			content.Hero.ImageURL = hosted
		}
	}

	for i, imageURL := range content.GalleryImages {
		if !isExternalURL(imageURL) {
			continue
		}
		hosted, err := p.rehoster.Rehost(ctx, imageURL, prefix, fmt.Sprintf("%d", i))
		if err != nil {
			logger.Warn("Gallery image rehost failed, keeping original URL",
				zap.String("url", imageURL),
				zap.Error(err),
			)
			continue
		}
		content.GalleryImages[i] = hosted
	}
}

func (p *Pipeline) persist(ctx context.Context, job *domain.CloningJob, content *domain.LandingPageContent) (*persistResult, error) {
	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = DefaultPageTitle
		content.Title = title
	}

	agentID := job.AgentID
	if agentID == "" {
		agentID = p.settings.GetDefault(ctx, "default_agent_id", defaultAgentID)
	}

	page := &domain.LandingPage{
		ID:      uuid.NewString(),
		Slug:    util.UniqueSlug(title),
		Title:   title,
		AgentID: agentID,
		Content: *content,
	}

	if err := p.pages.Insert(ctx, page); err != nil {
		return nil, err
	}

	return &persistResult{PageID: page.ID, Slug: page.Slug}, nil
}

func (p *Pipeline) fail(ctx context.Context, logger *zap.Logger, jobID, step string, cause error) error {
	logger.Error("Cloning job step failed",
		zap.String("step", step),
		zap.Error(cause),
	)

	if err := p.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		logger.Error("Failed to record job failure", zap.Error(err))
	}

	return apperrors.NewJobError("cloning job failed", jobID, step, cause)
}

func isExternalURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
