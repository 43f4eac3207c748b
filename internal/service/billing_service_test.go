package service

import (
	"context"
	"testing"
	"time"

	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/models"
	"github.com/listforge/listforge/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	nextID       int64
	byEmail      map[string]*models.User
	initialCoins map[int64]int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:      make(map[string]*models.User),
		initialCoins: make(map[int64]int64),
	}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	user, ok := r.byEmail[email]
	return user, ok, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User, initialCoins int64) (int64, error) {
	r.nextID++
	user.ID = r.nextID
	r.byEmail[user.Email] = user
	r.initialCoins[user.ID] = initialCoins
	return user.ID, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) Remove(ctx context.Context, id int64) error {
	for email, user := range r.byEmail {
		if user.ID == id {
			delete(r.byEmail, email)
		}
	}
	return nil
}

func paidEvent(email, product string, credits int64) *transfer.PaymentEvent {
	var event transfer.PaymentEvent
	event.ID = "evt-1"
	event.EventType = "subscription.paid"
	event.Object.ID = "sub-1"
	event.Object.Product.Name = product
	event.Object.Product.Credits = credits
	event.Object.Customer.Email = email
	event.Object.Customer.Name = "Jordan"
	event.Object.Status = "active"
	event.Object.CurrentPeriodEndDate = time.Now().Add(30 * 24 * time.Hour)
	return &event
}

func TestHandleSubscriptionExistingUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	subs := newFakeSubscriptionRepo()
	svc := NewBillingService(config.Config{}, users, subs)

	userID, err := users.Create(ctx, &models.User{Email: "jordan@example.com"}, models.InitialCredits)
	require.NoError(t, err)

	grant, err := svc.HandleSubscription(ctx, paidEvent("jordan@example.com", "Pro Plan", 1500))
	require.NoError(t, err)
	require.NotNil(t, grant)

	assert.Equal(t, "evt-1", grant.EventID)
	assert.Equal(t, userID, grant.UserID)
	assert.Equal(t, int64(1500), grant.Credits)

	sub, exists, _ := subs.GetByUserID(ctx, userID)
	require.True(t, exists)
	assert.Equal(t, models.PlanPro, sub.PlanTier)
	assert.Equal(t, "active", sub.Status)
}

func TestHandleSubscriptionCreatesUnknownUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	subs := newFakeSubscriptionRepo()
	svc := NewBillingService(config.Config{}, users, subs)

	grant, err := svc.HandleSubscription(ctx, paidEvent("new@example.com", "Business Plan", 5000))
	require.NoError(t, err)
	require.NotNil(t, grant)

	user, exists, _ := users.GetByEmail(ctx, "new@example.com")
	require.True(t, exists)
	assert.Equal(t, user.ID, grant.UserID)

	// The account starts at zero coins; the grant itself is applied by the
	// queue worker, keyed on the event id.
	assert.Equal(t, int64(0), users.initialCoins[user.ID])
}

func TestHandleSubscriptionIgnoresOtherEvents(t *testing.T) {
	svc := NewBillingService(config.Config{}, newFakeUserRepo(), newFakeSubscriptionRepo())

	event := paidEvent("jordan@example.com", "Pro Plan", 1500)
	event.EventType = "subscription.cancelled"

	grant, err := svc.HandleSubscription(context.Background(), event)
	require.NoError(t, err)
	assert.Nil(t, grant)
}

func TestPlanTierFromProduct(t *testing.T) {
	assert.Equal(t, models.PlanBusiness, planTierFromProduct("Business Annual"))
	assert.Equal(t, models.PlanPro, planTierFromProduct("pro monthly"))
	assert.Equal(t, models.PlanBasic, planTierFromProduct("Basic"))
	assert.Equal(t, models.PlanFree, planTierFromProduct("something else"))
}
