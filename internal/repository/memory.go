package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

// NewMemoryRepositories returns process-local stores. They back tests and
// single-node development runs; nothing survives a restart.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Accounts:    NewMemoryAccountRepository(),
		Posts:       NewMemoryPostRepository(),
		Preferences: &memoryPreferenceRepository{prefs: map[string]models.Preference{}},
		Analytics:   &memoryAnalyticsRepository{items: map[string]models.Analytics{}},
	}
}

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: map[string]models.Account{}}
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &acc, nil
}

func (r *MemoryAccountRepository) GetByExternalID(_ context.Context, externalID string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acc := range r.accounts {
		if acc.ExternalID == externalID {
			return &acc, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAccountRepository) Upsert(_ context.Context, acc *models.Account) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range r.accounts {
		if existing.ExternalID != acc.ExternalID {
			continue
		}
		acc.ID = id
		acc.CreatedAt = existing.CreatedAt
		acc.UpdatedAt = now
		acc.CredentialVersion = existing.CredentialVersion + 1
		r.accounts[id] = *acc
		return false, nil
	}

	id, err := newID()
	if err != nil {
		return false, err
	}
	acc.ID = id
	acc.CreatedAt = now
	acc.UpdatedAt = now
	acc.CredentialVersion = 1
	r.accounts[id] = *acc
	return true, nil
}

func (r *MemoryAccountRepository) ReplaceCredentials(_ context.Context, id string, version int64, creds models.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[id]
	if !ok || acc.CredentialVersion != version {
		return ErrCredentialConflict
	}
	acc.Apply(creds)
	acc.UpdatedAt = time.Now().UTC()
	r.accounts[id] = acc
	return nil
}

type MemoryPostRepository struct {
	mu    sync.RWMutex
	seq   int64
	posts map[string]models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: map[string]models.Post{}}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := newID()
	if err != nil {
		return err
	}
	r.seq++
	now := time.Now().UTC()
	post.ID = id
	post.Seq = r.seq
	post.CreatedAt = now
	post.UpdatedAt = now
	r.posts[id] = *post
	return nil
}

func (r *MemoryPostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (r *MemoryPostRepository) ListByAccountID(_ context.Context, accountID string) ([]*models.Post, error) {
	return r.filter(func(p models.Post) bool { return p.AccountID == accountID })
}

func (r *MemoryPostRepository) ListDue(_ context.Context, now time.Time) ([]*models.Post, error) {
	return r.filter(func(p models.Post) bool {
		return p.Status == models.PostStatusPending && !p.ScheduledDate.After(now)
	})
}

func (r *MemoryPostRepository) filter(keep func(models.Post) bool) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Post
	for _, p := range r.posts {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (r *MemoryPostRepository) MarkSent(_ context.Context, id, externalID string, at time.Time) error {
	return r.transition(id, models.PostStatusPending, ErrPostNotPending, func(p *models.Post) {
		p.Status = models.PostStatusSent
		p.ExternalID = externalID
		sentAt := at
		p.SentAt = &sentAt
		p.UpdatedAt = at
	})
}

func (r *MemoryPostRepository) MarkFailed(_ context.Context, id, reason string, at time.Time) error {
	return r.transition(id, models.PostStatusPending, ErrPostNotPending, func(p *models.Post) {
		p.Status = models.PostStatusFailed
		p.Error = reason
		p.UpdatedAt = at
	})
}

func (r *MemoryPostRepository) Requeue(_ context.Context, id string, at time.Time) error {
	return r.transition(id, models.PostStatusFailed, ErrPostNotFailed, func(p *models.Post) {
		p.Status = models.PostStatusPending
		p.Error = ""
		p.UpdatedAt = at
	})
}

func (r *MemoryPostRepository) transition(id, from string, conflict error, apply func(*models.Post)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok || post.Status != from {
		return conflict
	}
	apply(&post)
	r.posts[id] = post
	return nil
}

type memoryPreferenceRepository struct {
	mu    sync.RWMutex
	prefs map[string]models.Preference
}

func (r *memoryPreferenceRepository) GetByAccountID(_ context.Context, accountID string) (*models.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pref, ok := r.prefs[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	pref.PreferredPostTimes = append([]string(nil), pref.PreferredPostTimes...)
	return &pref, nil
}

func (r *memoryPreferenceRepository) Upsert(_ context.Context, pref *models.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.prefs[pref.AccountID]; ok {
		pref.CreatedAt = existing.CreatedAt
	} else {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now

	stored := *pref
	stored.PreferredPostTimes = append([]string{}, pref.PreferredPostTimes...)
	r.prefs[pref.AccountID] = stored
	return nil
}

type memoryAnalyticsRepository struct {
	mu    sync.RWMutex
	items map[string]models.Analytics
}

func (r *memoryAnalyticsRepository) GetByAccountID(_ context.Context, accountID string) (*models.Analytics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryAnalyticsRepository) Upsert(_ context.Context, a *models.Analytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.AccountID] = *a
	return nil
}
