package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
)

// JobRepo persists cloning jobs and their step outputs. The step-output table
// is what makes pipeline steps independently resumable: a re-run of a job
// skips every step whose output is already recorded.
type JobRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewJobRepo(ps *PostgresService, logger *zap.Logger) *JobRepo {
	return &JobRepo{
		db:     ps.GetDB(),
		logger: logger,
	}
}

func (r *JobRepo) Create(ctx context.Context, job *domain.CloningJob) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cloning_jobs (id, source_url, custom_instruction, agent_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		job.ID, job.SourceURL, job.CustomInstruction, job.AgentID, job.Status, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cloning job: %w", err)
	}
	return nil
}

func (r *JobRepo) Get(ctx context.Context, id string) (*domain.CloningJob, error) {
	job := &domain.CloningJob{}
	var jobErr, pageID sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, source_url, custom_instruction, agent_id, status, error, page_id, created_at, updated_at, completed_at
		FROM cloning_jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.SourceURL, &job.CustomInstruction, &job.AgentID, &job.Status,
		&jobErr, &pageID, &job.CreatedAt, &job.UpdatedAt, &completedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cloning job: %w", err)
	}

	job.Error = jobErr.String
	job.PageID = pageID.String
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return job, nil
}

// MarkProcessing flips a job to processing. Idempotent: re-running against a
// job already in processing succeeds without effect. A terminal job is not
// reopened.
func (r *JobRepo) MarkProcessing(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cloning_jobs SET status = $1, updated_at = $2
		WHERE id = $3 AND status IN ($4, $1)`,
		domain.JobProcessing, time.Now().UTC(), id, domain.JobPending,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s is not in a processable state", id)
	}

	return nil
}

func (r *JobRepo) MarkCompleted(ctx context.Context, id, pageID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE cloning_jobs SET status = $1, page_id = $2, updated_at = $3, completed_at = $3
		WHERE id = $4`,
		domain.JobCompleted, pageID, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

// MarkFailed records a failure. A completed job is never reopened as failed;
// terminal states are final.
func (r *JobRepo) MarkFailed(ctx context.Context, id, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE cloning_jobs SET status = $1, error = $2, updated_at = $3
		WHERE id = $4 AND status <> $5`,
		domain.JobFailed, message, time.Now().UTC(), id, domain.JobCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// ClaimPending atomically moves up to limit pending jobs to processing and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// job.
func (r *JobRepo) ClaimPending(ctx context.Context, limit int) ([]*domain.CloningJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE cloning_jobs SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM cloning_jobs
			WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, source_url, custom_instruction, agent_id, status, created_at, updated_at`,
		domain.JobProcessing, time.Now().UTC(), domain.JobPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.CloningJob, 0, limit)
	for rows.Next() {
		job := &domain.CloningJob{}
		if err := rows.Scan(&job.ID, &job.SourceURL, &job.CustomInstruction, &job.AgentID,
			&job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// SaveStepOutput records a completed step's output. Last write wins so an
// operator resubmission can overwrite a stale output.
func (r *JobRepo) SaveStepOutput(ctx context.Context, jobID string, step domain.JobStep, output []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cloning_job_steps (job_id, step, output, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, step) DO UPDATE SET output = $3, completed_at = $4`,
		jobID, step, output, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save step output: %w", err)
	}
	return nil
}

// GetStepOutput returns a recorded step output, or nil when the step has not
// completed yet.
func (r *JobRepo) GetStepOutput(ctx context.Context, jobID string, step domain.JobStep) ([]byte, error) {
	var output []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT output FROM cloning_job_steps WHERE job_id = $1 AND step = $2`,
		jobID, step,
	).Scan(&output)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load step output: %w", err)
	}

	return output, nil
}
