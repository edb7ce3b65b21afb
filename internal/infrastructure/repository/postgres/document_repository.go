package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/exam-prep-extractor/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across worker/cli startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	format TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	extraction_method TEXT,
	extraction_degraded BOOLEAN NOT NULL DEFAULT FALSE,
	readability_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
	extracted_text TEXT,
	question_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	topic TEXT NOT NULL,
	importance TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (document_id, position)
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, mime_type, format, storage_path, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		doc.ID, doc.Filename, doc.MimeType, string(doc.Format), doc.StoragePath,
		string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, format, storage_path, status, error_message, extraction_method, extraction_degraded, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var format, status string
	var method sql.NullString

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &format, &doc.StoragePath, &status,
		&doc.Error, &method, &doc.ExtractionDegraded, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Format = domain.Format(format)
	doc.Status = domain.DocumentStatus(status)
	if method.Valid {
		doc.ExtractionMethod = domain.ExtractionMethod(method.String)
	}
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return ensureAffected(res, "update document status", id)
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, id string, result domain.ExtractionResult) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extraction_method = $2, extraction_degraded = $3, readability_ratio = $4, extracted_text = $5, updated_at = $6
WHERE id = $1
`, id, string(result.Method), result.Degraded, result.Score.Ratio, result.Text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return ensureAffected(res, "save extraction", id)
}

// SaveQuestions replaces the question set of a document.
func (r *DocumentRepository) SaveQuestions(ctx context.Context, id string, questions []domain.QuestionCandidate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin questions tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE documents
SET question_count = $2, updated_at = $3
WHERE id = $1
`, id, len(questions), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update question count: %w", err)
	}
	if err := ensureAffected(res, "save questions", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE document_id = $1`, id); err != nil {
		return fmt.Errorf("delete previous questions: %w", err)
	}

	for idx, q := range questions {
		_, err := tx.ExecContext(ctx, `
INSERT INTO questions (
	document_id, position, question, answer, topic, importance, difficulty, confidence
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
			id, idx, q.Question, q.Answer, q.Topic, string(q.Importance), string(q.Difficulty), q.Confidence,
		)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit questions tx: %w", err)
	}
	return nil
}

// ListQuestions returns the stored question set in its original order.
func (r *DocumentRepository) ListQuestions(ctx context.Context, id string) ([]domain.QuestionCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT question, answer, topic, importance, difficulty, confidence
FROM questions
WHERE document_id = $1
ORDER BY position
`, id)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuestionCandidate, 0)
	for rows.Next() {
		var q domain.QuestionCandidate
		var importance, difficulty string
		if err := rows.Scan(&q.Question, &q.Answer, &q.Topic, &importance, &difficulty, &q.Confidence); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Importance = domain.ParseImportance(importance)
		q.Difficulty = domain.ParseDifficulty(difficulty)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func ensureAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
