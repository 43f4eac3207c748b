package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/transfer"
)

type fakePostRepo struct {
	mu      sync.Mutex
	nextID  int64
	posts   map[int64]*models.Post
	targets map[int64][]string
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:   make(map[int64]*models.Post),
		targets: make(map[int64][]string),
	}
}

func (r *fakePostRepo) add(post *models.Post) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	r.posts[post.ID] = post
	return post
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	copied := *post
	return r.add(&copied).ID, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []*models.Post
	for _, post := range r.posts {
		if post.UserID != userID {
			continue
		}
		if status != "" && post.Status != status {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}
	return posts, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	return ok && post.UserID == userID, nil
}

func (r *fakePostRepo) CompareAndTransition(ctx context.Context, postID int64, expected, next string, extra models.TransitionExtra) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok || post.Status != expected {
		return models.ErrConflict
	}
	post.Status = next
	post.ScheduledAt = extra.ScheduledAt
	post.UpdatedAt = time.Now()
	if len(extra.Targets) > 0 {
		r.targets[postID] = append([]string(nil), extra.Targets...)
	}
	return nil
}

func (r *fakePostRepo) UpdateDescription(ctx context.Context, postID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return models.ErrConflict
	}
	switch post.Status {
	case models.PostStatusPending, models.PostStatusApproved, models.PostStatusScheduled:
	default:
		return models.ErrConflict
	}
	post.Description = text
	return nil
}

func (r *fakePostRepo) FindDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*models.Post
	for _, post := range r.posts {
		if post.Status == models.PostStatusScheduled && post.ScheduledAt != nil && !post.ScheduledAt.After(now) {
			copied := *post
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *fakePostRepo) GetTargets(ctx context.Context, postID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.targets[postID]...), nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	delete(r.targets, id)
	return nil
}

type fakeLedgerRepo struct {
	mu       sync.Mutex
	balances map[int64]int64
	txs      []*models.LedgerTransaction
	debits   map[string]bool
	events   map[string]bool
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		balances: make(map[int64]int64),
		debits:   make(map[string]bool),
		events:   make(map[string]bool),
	}
}

func (r *fakeLedgerRepo) GetBalance(ctx context.Context, userID int64) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[userID]
	return balance, ok, nil
}

func (r *fakeLedgerRepo) CommitDebit(ctx context.Context, t *models.LedgerTransaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d/%s/%s", t.PostID, t.ActionKind, t.LocationID)
	if r.debits[key] {
		return false, nil
	}
	if r.balances[t.UserID] < t.Amount {
		return false, models.ErrInsufficientFunds
	}
	r.debits[key] = true
	r.balances[t.UserID] -= t.Amount
	copied := *t
	r.txs = append(r.txs, &copied)
	return true, nil
}

func (r *fakeLedgerRepo) ApplyCredit(ctx context.Context, e *models.CreditEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events[e.EventID] {
		return false, nil
	}
	r.events[e.EventID] = true
	r.balances[e.UserID] += e.Credits
	return true, nil
}

func (r *fakeLedgerRepo) ListTransactions(ctx context.Context, userID int64) ([]*models.LedgerTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var txs []*models.LedgerTransaction
	for _, t := range r.txs {
		if t.UserID == userID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

type fakeSubscriptionRepo struct {
	subs map[int64]*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[int64]*models.Subscription)}
}

func (r *fakeSubscriptionRepo) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	sub, ok := r.subs[userID]
	return sub, ok, nil
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, subscription *models.Subscription) error {
	r.subs[subscription.UserID] = subscription
	return nil
}

type fakeConnectionRepo struct {
	conns map[int64]*models.ListingConnection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: make(map[int64]*models.ListingConnection)}
}

func (r *fakeConnectionRepo) Create(ctx context.Context, tx *sql.Tx, conn *models.ListingConnection) (int64, error) {
	conn.ID = int64(len(r.conns) + 1)
	r.conns[conn.UserID] = conn
	return conn.ID, nil
}

func (r *fakeConnectionRepo) GetByUserID(ctx context.Context, userID int64) (*models.ListingConnection, error) {
	return r.conns[userID], nil
}

func (r *fakeConnectionRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.ListingConnection, error) {
	var conns []*models.ListingConnection
	for _, conn := range r.conns {
		if conn.TokenExpiresAt.After(initialTime) && conn.TokenExpiresAt.Before(finalTime) {
			conns = append(conns, conn)
		}
	}
	return conns, nil
}

func (r *fakeConnectionRepo) SetToken(ctx context.Context, userID int64, conn *models.ListingConnection) error {
	existing, ok := r.conns[userID]
	if !ok {
		return models.ErrNotFound
	}
	existing.AccessToken = conn.AccessToken
	existing.RefreshToken = conn.RefreshToken
	existing.TokenExpiresAt = conn.TokenExpiresAt
	return nil
}

func (r *fakeConnectionRepo) Remove(ctx context.Context, id int64) error {
	for userID, conn := range r.conns {
		if conn.ID == id {
			delete(r.conns, userID)
		}
	}
	return nil
}

type fakeHistoryRepo struct {
	mu   sync.Mutex
	rows []*models.PublishHistory
}

func (r *fakeHistoryRepo) Create(ctx context.Context, ph *models.PublishHistory) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ph.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, ph)
	return ph.ID, nil
}

func (r *fakeHistoryRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.PublishHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []*models.PublishHistory
	for _, row := range r.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	calls  int
	err    error
	ref    string
	onCall func()
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, post *models.Post, targets []string, accessToken string) (*transfer.PublishResult, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.onCall != nil {
		d.onCall()
	}
	if d.err != nil {
		return nil, d.err
	}
	return &transfer.PublishResult{ExternalRef: d.ref}, nil
}

type fakeGenerator struct {
	result *transfer.GenerationResult
	err    error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, logo []byte) (*transfer.GenerationResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}
