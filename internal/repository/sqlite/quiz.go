package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/repository"
)

// compile-time check that *QuizDB implements repository.QuizRepository
var _ repository.QuizRepository = (*QuizDB)(nil)

// QuizDB implements the quiz repository over SQLite.
type QuizDB struct {
	conn *sql.DB
}

// Create inserts a new quiz, assigning the ID and timestamps.
// The caller's struct is updated in place so it sees the assigned fields.
func (db *QuizDB) Create(ctx context.Context, quiz *model.Quiz) error {
	now := time.Now()
	quiz.ID = xid.New().String()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	questions := quiz.Questions
	if len(questions) == 0 {
		questions = []byte("[]")
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO quizzes (id, owner_id, title, description, questions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		quiz.ID,
		quiz.OwnerID,
		quiz.Title,
		quiz.Description,
		string(questions),
		quiz.CreatedAt,
		quiz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting quiz %s: %w", quiz.ID, err)
	}
	return nil
}

// GetByID retrieves a quiz by ID.
// Returns apperror.ErrNotFound if no quiz exists with that ID.
func (db *QuizDB) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var q model.Quiz
	var questions string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, questions, created_at, updated_at
		 FROM quizzes WHERE id = ?`, id,
	).Scan(
		&q.ID,
		&q.OwnerID,
		&q.Title,
		&q.Description,
		&questions,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("quiz", id)
		}
		return nil, fmt.Errorf("sqlite: getting quiz %s: %w", id, err)
	}

	q.Questions = []byte(questions)
	return &q, nil
}

// List returns quizzes newest-first with limit/offset pagination, optionally
// narrowed to a single owner.
func (db *QuizDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Quiz, error) {
	// Two static queries instead of string-building a WHERE clause — there is
	// only one optional filter, and static SQL can't pick up injection bugs.
	query := `SELECT id, owner_id, title, description, questions, created_at, updated_at
	 FROM quizzes ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args := []any{opts.Limit, opts.Offset}
	if opts.OwnerID != "" {
		query = `SELECT id, owner_id, title, description, questions, created_at, updated_at
	 FROM quizzes WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
		args = []any{opts.OwnerID, opts.Limit, opts.Offset}
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing quizzes: %w", err)
	}
	// rows MUST be closed, or the connection leaks back into the pool locked
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		var q model.Quiz
		var questions string
		if err := rows.Scan(
			&q.ID,
			&q.OwnerID,
			&q.Title,
			&q.Description,
			&questions,
			&q.CreatedAt,
			&q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning quiz row: %w", err)
		}
		q.Questions = []byte(questions)
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating quiz rows: %w", err)
	}

	return quizzes, nil
}

// Update saves a modified quiz. CreatedAt and OwnerID never change; UpdatedAt
// is bumped here.
func (db *QuizDB) Update(ctx context.Context, quiz *model.Quiz) error {
	quiz.UpdatedAt = time.Now()

	questions := quiz.Questions
	if len(questions) == 0 {
		questions = []byte("[]")
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE quizzes SET title = ?, description = ?, questions = ?, updated_at = ?
		 WHERE id = ?`,
		quiz.Title,
		quiz.Description,
		string(questions),
		quiz.UpdatedAt,
		quiz.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating quiz %s: %w", quiz.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating quiz %s: %w", quiz.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("quiz", quiz.ID)
	}
	return nil
}

// Delete removes a quiz by its ID.
// Returns apperror.ErrNotFound if the quiz doesn't exist.
func (db *QuizDB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting quiz %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting quiz %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("quiz", id)
	}
	return nil
}
