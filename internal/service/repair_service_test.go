package service

import (
	"context"
	"testing"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewRepairService(db, repository.NewRepairRepo(db), repository.NewCustomerRepo(db), repository.NewPaymentRepo(db), nil)

	r, err := svc.Create(ctx, &CreateRepairRequest{
		CustomerPhone:   "9700000001",
		CustomerName:    "Joseph",
		DeviceName:      "iPhone 11",
		Issue:           "battery",
		EstimatedAmount: dec("2500"),
		PaidAmount:      dec("500"),
		UsedParts:       []model.UsedPart{{Name: "Battery", Qty: 1, Price: dec("1200")}},
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.RepairPending, r.Status)
	assert.True(t, r.PendingAmount.Equal(dec("2000")))
	require.NotNil(t, r.CustomerID)

	r, err = svc.AddPayment(ctx, r.ID, &RepairPaymentRequest{Amount: dec("700"), Method: "upi"}, testActor)
	require.NoError(t, err)
	assert.True(t, r.PendingAmount.Equal(dec("1300")))

	_, err = svc.AddPayment(ctx, r.ID, &RepairPaymentRequest{Amount: dec("0")}, testActor)
	assert.ErrorIs(t, err, ErrValidation)

	r, err = svc.Complete(ctx, r.ID, &RepairPaymentRequest{Amount: dec("1300")}, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.RepairCompleted, r.Status)
	assert.NotNil(t, r.CompletedAt)
	assert.True(t, r.PendingAmount.IsZero())

	r, err = svc.Deliver(ctx, r.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.RepairDelivered, r.Status)

	_, err = svc.Deliver(ctx, r.ID, testActor)
	assert.ErrorIs(t, err, ErrRepairDelivered)
	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRepairNotFound)

	stored, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, stored.UsedParts, 1)
	assert.Equal(t, "Battery", stored.UsedParts[0].Name)

	var ledger []model.Payment
	require.NoError(t, db.Where("repair_id = ?", r.ID).Find(&ledger).Error)
	assert.Len(t, ledger, 3)

	list, err := svc.List(ctx, repository.RepairFilter{Status: model.RepairDelivered, Search: "iphone"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.List(ctx, repository.RepairFilter{Status: model.RepairPending})
	require.NoError(t, err)
	assert.Empty(t, list)
}
