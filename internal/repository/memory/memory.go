// Package memory implements the repository interfaces with in-process maps.
//
// This is the default backend: accounts and quizzes live for exactly as long
// as the process does, and a restart wipes everything. That sounds like a bug
// but is the intended default for the account core — persistence is an opt-in
// extra provided by the sqlite backend.
//
// CONCURRENCY:
// Every store guards its map with a sync.RWMutex. Reads (Get/Find/List) take
// the read lock and can run concurrently; writes take the write lock. Note
// that this only makes INDIVIDUAL operations atomic — the service layer owns
// the larger "check uniqueness, then create" critical sections and serializes
// those itself.
//
// COPY DISCIPLINE:
// The store hands out copies, never pointers into its own map. If callers
// could hold a pointer to the stored struct, they could mutate records
// without going through Update, silently bypassing the write lock.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/repository"
)

// compile-time checks that the stores implement the repository interfaces
var (
	_ repository.AccountRepository = (*AccountStore)(nil)
	_ repository.QuizRepository    = (*QuizStore)(nil)
)

// AccountStore is an in-memory AccountRepository.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account // keyed by account ID
}

// NewAccountStore creates an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*model.Account)}
}

// Create stores the record verbatim. The caller supplies the ID (accounts use
// caller-generated xids so the service can mint the ID before the record exists).
func (s *AccountStore) Create(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.ID == "" {
		return apperror.ValidationFailed("id", "account ID is required")
	}
	if _, ok := s.accounts[account.ID]; ok {
		return apperror.ValidationFailed("id", "account ID already exists")
	}

	stored := *account
	s.accounts[account.ID] = &stored
	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}
	out := *acct
	return &out, nil
}

// FindByUsername scans all records for a case-insensitive username match.
//
// A linear scan is O(n), which is fine at this scale — the moment it isn't,
// the sqlite backend (with its indexes) is the answer, not a second map here.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.accounts {
		if strings.EqualFold(acct.Username, username) {
			out := *acct
			return &out, nil
		}
	}
	return nil, apperror.NotFoundBy("account", "username", username)
}

// FindByEmail scans all records for a case-insensitive email match.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.accounts {
		if strings.EqualFold(acct.Email, email) {
			out := *acct
			return &out, nil
		}
	}
	return nil, apperror.NotFoundBy("account", "email", email)
}

// Update merges the patch into the stored record and returns a copy of the
// result. Only the fields the patch carries are touched — in particular,
// ModifiedAt moves only when the patch says so.
func (s *AccountStore) Update(ctx context.Context, id string, patch repository.AccountPatch) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, apperror.NotFound("account", id)
	}

	if patch.Username != nil {
		acct.Username = *patch.Username
	}
	if patch.Email != nil {
		acct.Email = *patch.Email
	}
	if patch.CredentialHash != nil {
		acct.CredentialHash = *patch.CredentialHash
	}
	if patch.Tier != nil {
		acct.Tier = *patch.Tier
	}
	if patch.AvatarURL != nil {
		acct.AvatarURL = *patch.AvatarURL
	}
	if patch.Status != nil {
		acct.Status = *patch.Status
	}
	if patch.FailedAttempts != nil {
		acct.FailedAttempts = *patch.FailedAttempts
	}
	if patch.ClearLastFailedAt {
		acct.LastFailedAt = nil
	} else if patch.LastFailedAt != nil {
		t := *patch.LastFailedAt
		acct.LastFailedAt = &t
	}
	if patch.ModifiedAt != nil {
		acct.ModifiedAt = *patch.ModifiedAt
	}

	out := *acct
	return &out, nil
}

func (s *AccountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return apperror.NotFound("account", id)
	}
	delete(s.accounts, id)
	return nil
}

func (s *AccountStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok, nil
}

func (s *AccountStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.accounts), nil
}

// QuizStore is an in-memory QuizRepository.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*model.Quiz
}

// NewQuizStore creates an empty in-memory quiz store.
func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]*model.Quiz)}
}

// Create assigns an ID and timestamps, then stores the quiz. The caller's
// struct is updated in place so it sees the assigned fields.
func (s *QuizStore) Create(ctx context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	quiz.ID = xid.New().String()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	stored := *quiz
	s.quizzes[quiz.ID] = &stored
	return nil
}

func (s *QuizStore) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, apperror.NotFound("quiz", id)
	}
	out := *quiz
	return &out, nil
}

// List returns quizzes newest-first with limit/offset pagination.
//
// Map iteration order is random in Go, so we sort explicitly — xid strings
// are time-ordered, which gives a stable "newest first" ordering for free.
func (s *QuizStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]model.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		if opts.OwnerID != "" && quiz.OwnerID != opts.OwnerID {
			continue
		}
		all = append(all, *quiz)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	if opts.Offset >= len(all) {
		return []model.Quiz{}, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (s *QuizStore) Update(ctx context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.quizzes[quiz.ID]
	if !ok {
		return apperror.NotFound("quiz", quiz.ID)
	}

	quiz.CreatedAt = existing.CreatedAt
	quiz.UpdatedAt = time.Now()

	stored := *quiz
	s.quizzes[quiz.ID] = &stored
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return apperror.NotFound("quiz", id)
	}
	delete(s.quizzes, id)
	return nil
}
