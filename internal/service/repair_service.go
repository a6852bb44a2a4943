package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/ws"
	"go-shop-pos/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRepairNotFound  = errors.New("repair not found")
	ErrRepairDelivered = errors.New("repair has already been delivered")
)

type CreateRepairRequest struct {
	CustomerPhone   string           `json:"customer_phone" validate:"required,mobile_in"`
	CustomerName    string           `json:"customer_name" validate:"required,max=255"`
	DeviceName      string           `json:"device_name" validate:"required,max=255"`
	Issue           string           `json:"issue"`
	EstimatedAmount decimal.Decimal  `json:"estimated_amount" validate:"gte=0"`
	PaidAmount      decimal.Decimal  `json:"paid_amount" validate:"gte=0"`
	UsedParts       []model.UsedPart `json:"used_parts"`
	Method          string           `json:"method"`
}

type RepairPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	Method string          `json:"method"`
}

type RepairService interface {
	Create(ctx context.Context, req *CreateRepairRequest, actor Actor) (*model.Repair, error)
	AddPayment(ctx context.Context, id uuid.UUID, req *RepairPaymentRequest, actor Actor) (*model.Repair, error)
	Complete(ctx context.Context, id uuid.UUID, req *RepairPaymentRequest, actor Actor) (*model.Repair, error)
	Deliver(ctx context.Context, id uuid.UUID, actor Actor) (*model.Repair, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Repair, error)
	List(ctx context.Context, f repository.RepairFilter) ([]model.Repair, error)
}

type repairService struct {
	db           *gorm.DB
	repairRepo   repository.RepairRepository
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRepository
	wsHub        *ws.Hub
}

func NewRepairService(db *gorm.DB, repairRepo repository.RepairRepository, customerRepo repository.CustomerRepository, paymentRepo repository.PaymentRepository, hub *ws.Hub) RepairService {
	return &repairService{
		db:           db,
		repairRepo:   repairRepo,
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		wsHub:        hub,
	}
}

func repairLedger(r *model.Repair, amount decimal.Decimal, method, by string) *model.Payment {
	if method == "" {
		method = string(model.PaymentCash)
	}
	p := &model.Payment{
		RepairID:      &r.ID,
		CustomerID:    r.CustomerID,
		CustomerPhone: r.CustomerPhone,
		Amount:        amount,
		PaidAmount:    r.PaidAmount,
		PendingAmount: r.PendingAmount,
		Method:        method,
		Status:        model.LedgerCompleted,
	}
	p.CreatedBy = by
	return p
}

func (s *repairService) Create(ctx context.Context, req *CreateRepairRequest, actor Actor) (*model.Repair, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	customer, err := resolveCustomer(ctx, s.customerRepo, req.CustomerPhone, req.CustomerName, actor.ID)
	if err != nil {
		return nil, err
	}

	r := &model.Repair{
		CustomerID:      &customer.ID,
		CustomerPhone:   req.CustomerPhone,
		CustomerName:    req.CustomerName,
		DeviceName:      req.DeviceName,
		Issue:           req.Issue,
		EstimatedAmount: req.EstimatedAmount,
		PaidAmount:      req.PaidAmount,
		PendingAmount:   pendingOf(req.EstimatedAmount, req.PaidAmount),
		Status:          model.RepairPending,
		UsedParts:       req.UsedParts,
		InDate:          time.Now(),
	}
	r.CreatedBy = actor.ID
	r.UpdatedBy = actor.ID
	if err := s.repairRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	if r.PaidAmount.IsPositive() {
		if err := s.paymentRepo.Create(ctx, repairLedger(r, r.PaidAmount, req.Method, actor.ID)); err != nil {
			log.Printf("repair %s: payment ledger write failed: %v", r.ID, err)
		}
		if err := s.customerRepo.TouchLastPayment(ctx, customer.ID, r.InDate); err != nil {
			log.Printf("customer %s: last payment update failed: %v", customer.ID, err)
		}
	}

	s.wsHub.Publish(ws.Event{
		Type:    "repair",
		Action:  "repair_created",
		Data:    map[string]interface{}{"id": r.ID, "device_name": r.DeviceName, "customer_phone": r.CustomerPhone},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s booked in %s", actor.Name, r.DeviceName),
	})
	return r, nil
}

// collect applies a payment and optional status change to a locked repair
// and appends the ledger row, all in one transaction.
func (s *repairService) collect(ctx context.Context, id uuid.UUID, amount decimal.Decimal, method string, status model.RepairStatus, actor Actor) (*model.Repair, error) {
	var updated *model.Repair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repairs := s.repairRepo.WithTx(tx)
		r, err := repairs.FindByIDForUpdate(ctx, id)
		if database.IsNotFound(err) {
			return ErrRepairNotFound
		}
		if err != nil {
			return err
		}
		if r.Status == model.RepairDelivered {
			return ErrRepairDelivered
		}

		now := time.Now()
		r.PaidAmount = r.PaidAmount.Add(amount)
		r.PendingAmount = pendingOf(r.EstimatedAmount, r.PaidAmount)
		switch status {
		case model.RepairCompleted:
			r.Status = status
			r.CompletedAt = &now
		case model.RepairDelivered:
			r.Status = status
			r.DeliveredAt = &now
		}
		r.UpdatedBy = actor.ID
		if err := repairs.Update(ctx, r); err != nil {
			return err
		}
		if amount.IsPositive() {
			if err := s.paymentRepo.WithTx(tx).Create(ctx, repairLedger(r, amount, method, actor.ID)); err != nil {
				return err
			}
			if r.CustomerID != nil {
				if err := s.customerRepo.WithTx(tx).TouchLastPayment(ctx, *r.CustomerID, now); err != nil {
					return err
				}
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "repair",
		Action: "repair_updated",
		Data:   map[string]interface{}{"id": updated.ID, "status": updated.Status, "pending_amount": updated.PendingAmount},
		User:   actor.wsActor(),
	})
	return updated, nil
}

func (s *repairService) AddPayment(ctx context.Context, id uuid.UUID, req *RepairPaymentRequest, actor Actor) (*model.Repair, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount must be greater than 0")
	}
	return s.collect(ctx, id, req.Amount, req.Method, "", actor)
}

// Complete marks the job done, optionally collecting a final amount.
func (s *repairService) Complete(ctx context.Context, id uuid.UUID, req *RepairPaymentRequest, actor Actor) (*model.Repair, error) {
	if req == nil {
		req = &RepairPaymentRequest{}
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.collect(ctx, id, req.Amount, req.Method, model.RepairCompleted, actor)
}

func (s *repairService) Deliver(ctx context.Context, id uuid.UUID, actor Actor) (*model.Repair, error) {
	return s.collect(ctx, id, decimal.Zero, "", model.RepairDelivered, actor)
}

func (s *repairService) Get(ctx context.Context, id uuid.UUID) (*model.Repair, error) {
	r, err := s.repairRepo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrRepairNotFound
	}
	return r, err
}

func (s *repairService) List(ctx context.Context, f repository.RepairFilter) ([]model.Repair, error) {
	return s.repairRepo.FindByFilter(ctx, f)
}
