package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/ws"
	"go-shop-pos/pkg/database"
	"go-shop-pos/pkg/validator"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
)

// Actor is the signed-in staff member performing an operation.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) wsActor() *ws.Actor {
	if a.ID == "" {
		return nil
	}
	return &ws.Actor{ID: a.ID, Name: a.Name, Email: a.Email}
}

// validate runs struct validation and folds the first failure into
// ErrValidation.
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: Field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// pendingOf is max(0, total - paid).
func pendingOf(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(paid))
}

// resolveCustomer finds the customer for phone and touches lastVisitAt, or
// creates one with zeroed aggregates. It runs outside any transaction; a
// concurrent create for the same phone trips the unique index and the
// winner's row is returned instead.
func resolveCustomer(ctx context.Context, repo repository.CustomerRepository, phone, name, by string) (*model.Customer, error) {
	now := time.Now()
	c, err := repo.FindByPhone(ctx, phone)
	if err == nil {
		if err := repo.TouchLastVisit(ctx, c.ID, now); err != nil {
			return nil, err
		}
		c.LastVisitAt = &now
		return c, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	c = &model.Customer{
		Name:               name,
		Phone:              phone,
		TotalPurchases:     decimal.Zero,
		TotalPendingAmount: decimal.Zero,
		LastVisitAt:        &now,
	}
	c.CreatedBy = by
	c.UpdatedBy = by
	if err := repo.Create(ctx, c); err != nil {
		if !database.IsDuplicateKey(err) {
			return nil, err
		}
		return repo.FindByPhone(ctx, phone)
	}
	return c, nil
}

// inflight rejects a second concurrent operation for the same key.
type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{keys: make(map[string]struct{})}
}

func (f *inflight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inflight) release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}
