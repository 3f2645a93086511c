// Package repository defines the storage interfaces the service layer
// programs against.
//
// Two implementations exist:
//   - internal/repository/memory — process-lifetime maps, the default backend.
//     Restarting the process wipes every record.
//   - internal/repository/sqlite — optional persistent backend, enabled by
//     setting DB_PATH.
//
// The service layer never imports either implementation — main.go picks one
// and passes it in. That's what lets service tests run against tiny in-memory
// fakes and lets the backend be swapped without touching business logic.
package repository

import (
	"context"
	"time"

	"github.com/tasnim/quizhub/internal/model"
)

// AccountPatch is a partial update to an account. Nil pointer = leave the
// field alone; non-nil = set it.
//
// WHY POINTER FIELDS (not a map, not the full struct)?
// A full-struct update can't distinguish "set FailedAttempts to 0" from
// "don't touch FailedAttempts". A map[string]any loses type safety. Pointer
// fields give us both: explicit presence and compile-time types.
//
// LastFailedAt needs one extra bit: "set it to nil" is a real operation
// (clearing the failure marker after a successful login), distinct from
// "leave it alone". ClearLastFailedAt carries that bit.
//
// Note there is deliberately NO implicit ModifiedAt bump: the service decides
// when a mutation counts as a profile modification (a failed login attempt
// does not).
type AccountPatch struct {
	Username          *string
	Email             *string
	CredentialHash    *string
	Tier              *model.Tier
	AvatarURL         *string
	Status            *model.Status
	FailedAttempts    *int
	LastFailedAt      *time.Time
	ClearLastFailedAt bool
	ModifiedAt        *time.Time
}

// AccountRepository is the keyed account store.
//
// Uniqueness of username/email is NOT enforced here — FindByUsername and
// FindByEmail are case-insensitive lookups the service uses to pre-check, and
// the service serializes its check-then-write sequences. (The sqlite backend
// additionally declares unique indexes as a backstop.)
type AccountRepository interface {
	// Create stores the record verbatim. The caller supplies the ID.
	Create(ctx context.Context, account *model.Account) error
	// GetByID returns the account or apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Account, error)
	// FindByUsername does a case-insensitive lookup; apperror.ErrNotFound if absent.
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	// FindByEmail does a case-insensitive lookup; apperror.ErrNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	// Update merges the patch into the record and returns the updated record,
	// or apperror.ErrNotFound if the id is absent.
	Update(ctx context.Context, id string, patch AccountPatch) (*model.Account, error)
	// Delete removes the record; apperror.ErrNotFound if absent.
	// Present as a store primitive — no lifecycle flow exercises it.
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type ListOptions struct {
	Limit  int
	Offset int

	// OwnerID narrows the listing to one owner's quizzes. Empty = all owners.
	OwnerID string
}

// QuizRepository stores quizzes. Unlike accounts, IDs and timestamps are
// assigned by the implementation on Create — quiz creation has no
// check-then-write sequence that would need the caller to pick the ID first.
type QuizRepository interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	List(ctx context.Context, opts ListOptions) ([]model.Quiz, error)
	Update(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id string) error
}
