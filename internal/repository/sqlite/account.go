package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/repository"
)

// compile-time check that *AccountDB implements repository.AccountRepository
var _ repository.AccountRepository = (*AccountDB)(nil)

// AccountDB implements the account repository over SQLite.
type AccountDB struct {
	conn *sql.DB
}

const accountColumns = `id, username, email, credential_hash, tier, avatar_url,
	status, failed_attempts, last_failed_at, created_at, modified_at`

// scanAccount reads one row into a model.Account.
//
// last_failed_at is the only nullable column — sql.NullTime bridges SQL NULL
// to the model's *time.Time.
func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var lastFailed sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.CredentialHash,
		&a.Tier,
		&a.AvatarURL,
		&a.Status,
		&a.FailedAttempts,
		&lastFailed,
		&a.CreatedAt,
		&a.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastFailed.Valid {
		t := lastFailed.Time
		a.LastFailedAt = &t
	}
	return &a, nil
}

// Create inserts the record verbatim — the caller supplies the ID and
// timestamps, exactly like the memory backend.
func (db *AccountDB) Create(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		return apperror.ValidationFailed("id", "account ID is required")
	}

	var lastFailed sql.NullTime
	if account.LastFailedAt != nil {
		lastFailed = sql.NullTime{Time: *account.LastFailedAt, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Username,
		account.Email,
		account.CredentialHash,
		account.Tier,
		account.AvatarURL,
		account.Status,
		account.FailedAttempts,
		lastFailed,
		account.CreatedAt,
		account.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting account %s: %w", account.ID, err)
	}
	return nil
}

// GetByID retrieves an account by its internal ID.
// Returns apperror.ErrNotFound if no account exists with that ID.
func (db *AccountDB) GetByID(ctx context.Context, id string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("account", id)
		}
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}
	return account, nil
}

// FindByUsername looks up an account by username, case-insensitively.
// The COLLATE NOCASE here matches the unique index, so the comparison and
// the constraint agree on what "equal" means.
func (db *AccountDB) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE username = ? COLLATE NOCASE LIMIT 1`, username)

	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundBy("account", "username", username)
		}
		return nil, fmt.Errorf("sqlite: finding account by username %s: %w", username, err)
	}
	return account, nil
}

// FindByEmail looks up an account by email, case-insensitively.
func (db *AccountDB) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE email = ? COLLATE NOCASE LIMIT 1`, email)

	account, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundBy("account", "email", email)
		}
		return nil, fmt.Errorf("sqlite: finding account by email %s: %w", email, err)
	}
	return account, nil
}

// Update applies a partial patch and returns the updated record.
//
// DYNAMIC SET CLAUSE:
// Only the columns the patch carries appear in the UPDATE. Building the SQL
// from a fixed list of column names (never from caller input) keeps this
// injection-safe; the values all go through placeholders.
func (db *AccountDB) Update(ctx context.Context, id string, patch repository.AccountPatch) (*model.Account, error) {
	var (
		sets []string
		args []any
	)

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Username != nil {
		set("username", *patch.Username)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.CredentialHash != nil {
		set("credential_hash", *patch.CredentialHash)
	}
	if patch.Tier != nil {
		set("tier", *patch.Tier)
	}
	if patch.AvatarURL != nil {
		set("avatar_url", *patch.AvatarURL)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.FailedAttempts != nil {
		set("failed_attempts", *patch.FailedAttempts)
	}
	if patch.ClearLastFailedAt {
		sets = append(sets, "last_failed_at = NULL")
	} else if patch.LastFailedAt != nil {
		set("last_failed_at", *patch.LastFailedAt)
	}
	if patch.ModifiedAt != nil {
		set("modified_at", *patch.ModifiedAt)
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := db.conn.ExecContext(ctx,
			`UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating account %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating account %s: %w", id, err)
		}
		if affected == 0 {
			return nil, apperror.NotFound("account", id)
		}
	}

	// Read the row back so the caller gets the canonical merged record.
	return db.GetByID(ctx, id)
}

// Delete removes an account. Present as a store primitive — no lifecycle flow
// calls it, but administrative tooling can.
func (db *AccountDB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting account %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting account %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("account", id)
	}
	return nil
}

func (db *AccountDB) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking account %s: %w", id, err)
	}
	return true, nil
}

func (db *AccountDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting accounts: %w", err)
	}
	return n, nil
}
