package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/imovia/imovia-go/internal/domain"
	"go.uber.org/zap"
)

func newMockJobRepo(t *testing.T) (*JobRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &JobRepo{db: db, logger: zap.NewNop()}, mock
}

func TestCreateInsertsJobTimestamps(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	created := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO cloning_jobs").
		WithArgs("job-1", "https://example.com", "", "", domain.JobPending, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.CloningJob{
		ID:        "job-1",
		SourceURL: "https://example.com",
		Status:    domain.JobPending,
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkProcessingIsIdempotent(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectExec("UPDATE cloning_jobs SET status").
		WithArgs(domain.JobProcessing, sqlmock.AnyArg(), "job-1", domain.JobPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkProcessing(context.Background(), "job-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkProcessingRejectsTerminalJob(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectExec("UPDATE cloning_jobs SET status").
		WithArgs(domain.JobProcessing, sqlmock.AnyArg(), "job-2", domain.JobPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessing(context.Background(), "job-2")
	if err == nil {
		t.Fatal("expected error for non-processable job")
	}
	if !strings.Contains(err.Error(), "not in a processable state") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkFailedGuardsCompletedJobs(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectExec("UPDATE cloning_jobs SET status").
		WithArgs(domain.JobFailed, "boom", sqlmock.AnyArg(), "job-3", domain.JobCompleted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkFailed(context.Background(), "job-3", "boom"); err != nil {
		t.Fatalf("marking a completed job failed must be a silent no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("status guard missing from update: %v", err)
	}
}

func TestGetStepOutputReturnsNilWhenAbsent(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectQuery("SELECT output FROM cloning_job_steps").
		WithArgs("job-4", domain.StepScrape).
		WillReturnRows(sqlmock.NewRows([]string{"output"}))

	out, err := repo.GetStepOutput(context.Background(), "job-4", domain.StepScrape)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output for unrecorded step, got %q", out)
	}
}
