package service

import (
	"context"
	"testing"

	"github.com/listforge/listforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveInsufficientFunds(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.balances[1] = 40
	svc := NewLedgerService(repo)

	err := svc.Reserve(context.Background(), 1, 50)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestReserveMissingAccount(t *testing.T) {
	svc := NewLedgerService(newFakeLedgerRepo())

	err := svc.Reserve(context.Background(), 1, 10)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestReserveExactBalance(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.balances[1] = 50
	svc := NewLedgerService(repo)

	err := svc.Reserve(context.Background(), 1, 50)
	assert.NoError(t, err)
}

func TestCommitDebitRepeatAbsorbed(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLedgerRepo()
	repo.balances[1] = 100
	svc := NewLedgerService(repo)

	err := svc.CommitDebit(ctx, 1, 7, models.ActionPublishLocation, 50, "loc-a")
	require.NoError(t, err)

	// Same (post, action, location) key: no error, no second charge.
	err = svc.CommitDebit(ctx, 1, 7, models.ActionPublishLocation, 50, "loc-a")
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	txs, err := svc.Transactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestCommitDebitDistinctLocations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLedgerRepo()
	repo.balances[1] = 100
	svc := NewLedgerService(repo)

	require.NoError(t, svc.CommitDebit(ctx, 1, 7, models.ActionPublishLocation, 50, "loc-a"))
	require.NoError(t, svc.CommitDebit(ctx, 1, 7, models.ActionPublishLocation, 50, "loc-b"))

	balance, _ := svc.Balance(ctx, 1)
	assert.Equal(t, int64(0), balance)
}

func TestApplyCreditIdempotentByEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo)

	applied, err := svc.ApplyCredit(ctx, "evt-1", 1, 500)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = svc.ApplyCredit(ctx, "evt-1", 1, 500)
	require.NoError(t, err)
	assert.False(t, applied)

	balance, _ := svc.Balance(ctx, 1)
	assert.Equal(t, int64(500), balance)
}

func TestApplyCreditRejectsNonPositive(t *testing.T) {
	svc := NewLedgerService(newFakeLedgerRepo())

	_, err := svc.ApplyCredit(context.Background(), "evt-1", 1, 0)
	assert.Error(t, err)
}
