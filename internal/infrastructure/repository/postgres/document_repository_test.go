package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, mime_type, format, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDMapsColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "filename", "mime_type", "format", "storage_path", "status", "error_message",
		"extraction_method", "extraction_degraded", "created_at", "updated_at",
	}).AddRow("doc-1", "paper.pdf", "application/pdf", "pdf", "doc-1_paper.pdf", "ready", "", "optical_recognition", true, now, now)

	mock.ExpectQuery("SELECT id, filename").WithArgs("doc-1").WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.Format != domain.FormatPDF || doc.Status != domain.StatusReady {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.ExtractionMethod != domain.MethodOpticalRecognition || !doc.ExtractionDegraded {
		t.Fatalf("unexpected extraction fields: %+v", doc)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", string(domain.StatusProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusProcessing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveExtractionReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", "direct_parse", false, 0.92, "text", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveExtraction(context.Background(), "missing", domain.ExtractionResult{
		Text:   "text",
		Method: domain.MethodDirectParse,
		Score:  domain.ReadabilityScore{Ratio: 0.92},
	})
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveQuestionsReplacesSetInTransaction(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	questions := []domain.QuestionCandidate{
		{Question: "What is entropy?", Answer: "Disorder.", Topic: "Physics", Importance: domain.ImportanceHigh, Difficulty: domain.DifficultyEasy, Confidence: 0.85},
		{Question: "Define enthalpy.", Answer: "Heat content.", Topic: "Chemistry", Importance: domain.ImportanceMedium, Difficulty: domain.DifficultyMedium, Confidence: 0.6},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM questions").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO questions").
		WithArgs("doc-1", 0, "What is entropy?", "Disorder.", "Physics", "high", "easy", 0.85).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO questions").
		WithArgs("doc-1", 1, "Define enthalpy.", "Heat content.", "Chemistry", "medium", "medium", 0.6).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.SaveQuestions(context.Background(), "doc-1", questions); err != nil {
		t.Fatalf("SaveQuestions() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveQuestionsRollsBackOnInsertError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM questions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO questions").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveQuestions(context.Background(), "doc-1", []domain.QuestionCandidate{{Question: "What is entropy?"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveQuestionsReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SaveQuestions(context.Background(), "missing", nil)
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListQuestionsOrdersByPosition(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"question", "answer", "topic", "importance", "difficulty", "confidence"}).
		AddRow("What is entropy?", "Disorder.", "Physics", "high", "easy", 0.85).
		AddRow("Define enthalpy.", "Heat content.", "Chemistry", "bogus", "hard", 0.6)
	mock.ExpectQuery("SELECT question, answer").WithArgs("doc-1").WillReturnRows(rows)

	got, err := repo.ListQuestions(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(got) != 2 || got[1].Importance != domain.ImportanceMedium || got[1].Difficulty != domain.DifficultyHard {
		t.Fatalf("unexpected questions: %+v", got)
	}
}
