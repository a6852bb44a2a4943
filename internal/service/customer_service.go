package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go-shop-pos/internal/model"
	"go-shop-pos/internal/repository"
	"go-shop-pos/pkg/database"
	"go-shop-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("a customer with this phone is already registered")
	ErrCampaignTooSoon  = errors.New("a campaign was sent to this customer recently")
)

type ProfileTag string

const (
	TagCreditRisk ProfileTag = "CREDIT_RISK"
	TagInactive   ProfileTag = "INACTIVE"
	TagLoyal      ProfileTag = "LOYAL"
	TagLowRisk    ProfileTag = "LOW_RISK"
)

var creditRiskThreshold = decimal.NewFromInt(5000)

// loyalVisits is the number of sales and repairs after which a customer
// with no sale balance counts as loyal.
const loyalVisits = 3

const (
	inactiveAfterDays   = 30
	campaignGapDays     = 7
	topPendingLimit     = 5
	neverDays           = 999
	hoursPerDay         = 24
	maxCampaignListSize = 100
)

// CustomerHistory is the profile view. TotalPending includes repair
// balances for display; the tag only looks at sale balances.
type CustomerHistory struct {
	Customer     *model.Customer `json:"customer"`
	Sales        []model.Sale    `json:"sales"`
	Repairs      []model.Repair  `json:"repairs"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	TotalPending decimal.Decimal `json:"total_pending"`
	Visits       int             `json:"visits"`
	LastVisitAt  *time.Time      `json:"last_visit_at,omitempty"`
	Tag          ProfileTag      `json:"tag"`
}

type RegisterCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"required,mobile_in"`
}

type UpdateCustomerRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CampaignTarget is a customer picked for a reminder or win-back message.
type CampaignTarget struct {
	model.Customer
	DaysSinceLastPayment int   `json:"days_since_last_payment"`
	DaysSinceLastVisit   int   `json:"days_since_last_visit"`
	PriorityScore        int64 `json:"priority_score"`
}

type CustomerService interface {
	Register(ctx context.Context, req *RegisterCustomerRequest, actor Actor) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*model.Customer, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateCustomerRequest, actor Actor) (*model.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, phone string) (*CustomerHistory, error)
	TopPending(ctx context.Context, limit int) ([]CampaignTarget, error)
	Inactive(ctx context.Context, days int) ([]CampaignTarget, error)
	MarkCampaignSent(ctx context.Context, id uuid.UUID) (*model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	repairRepo   repository.RepairRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, saleRepo repository.SaleRepository, repairRepo repository.RepairRepository) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		repairRepo:   repairRepo,
	}
}

// Register creates a customer from the shop's intake form or the public QR
// page. A phone that is already on file is rejected.
func (s *customerService) Register(ctx context.Context, req *RegisterCustomerRequest, actor Actor) (*model.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	_, err := s.customerRepo.FindByPhone(ctx, req.Phone)
	if err == nil {
		return nil, ErrCustomerExists
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	c := &model.Customer{
		Name:               req.Name,
		Phone:              req.Phone,
		TotalPurchases:     decimal.Zero,
		TotalPendingAmount: decimal.Zero,
	}
	c.CreatedBy = actor.ID
	c.UpdatedBy = actor.ID
	if err := s.customerRepo.Create(ctx, c); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrCustomerExists
		}
		return nil, err
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindAll(ctx)
}

func (s *customerService) GetByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	if !validator.IsMobile(phone) {
		return nil, invalid("enter a valid 10 digit mobile number")
	}
	c, err := s.customerRepo.FindByPhone(ctx, phone)
	if database.IsNotFound(err) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req *UpdateCustomerRequest, actor Actor) (*model.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.customerRepo.UpdateName(ctx, id, req.Name, actor.ID); database.IsNotFound(err) {
		return nil, ErrCustomerNotFound
	} else if err != nil {
		return nil, err
	}
	return s.customerRepo.FindByID(ctx, id)
}

// Delete removes the customer record. Sales and repairs keep their phone
// and name snapshot.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.customerRepo.Delete(ctx, id)
	if database.IsNotFound(err) {
		return ErrCustomerNotFound
	}
	return err
}

func (s *customerService) History(ctx context.Context, phone string) (*CustomerHistory, error) {
	c, err := s.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.FindByCustomerPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	repairs, err := s.repairRepo.FindByCustomerPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	h := &CustomerHistory{
		Customer:     c,
		Sales:        sales,
		Repairs:      repairs,
		TotalSpent:   decimal.Zero,
		TotalPending: c.TotalPendingAmount,
		Visits:       len(sales) + len(repairs),
		LastVisitAt:  c.LastVisitAt,
	}
	salesPending := decimal.Zero
	for _, sale := range sales {
		h.TotalSpent = h.TotalSpent.Add(sale.Total)
		salesPending = salesPending.Add(sale.PendingAmount)
		h.LastVisitAt = latest(h.LastVisitAt, sale.Date)
	}
	for _, r := range repairs {
		h.TotalPending = h.TotalPending.Add(r.PendingAmount)
		h.LastVisitAt = latest(h.LastVisitAt, r.InDate)
	}
	h.Tag = ProfileTagFor(h.LastVisitAt, h.Visits, salesPending)
	return h, nil
}

func latest(cur *time.Time, t time.Time) *time.Time {
	if cur == nil || t.After(*cur) {
		return &t
	}
	return cur
}

// ProfileTagFor classifies a customer from the sale balance, the number of
// sales and repairs, and the last time they were seen.
func ProfileTagFor(lastVisit *time.Time, visits int, salesPending decimal.Decimal) ProfileTag {
	switch {
	case salesPending.GreaterThanOrEqual(creditRiskThreshold):
		return TagCreditRisk
	case lastVisit == nil:
		return TagInactive
	case visits >= loyalVisits && !salesPending.IsPositive():
		return TagLoyal
	default:
		return TagLowRisk
	}
}

// TopPending ranks customers with an open balance by amount times days since
// their last payment, skipping anyone messaged within the campaign gap.
func (s *customerService) TopPending(ctx context.Context, limit int) ([]CampaignTarget, error) {
	if limit <= 0 {
		limit = topPendingLimit
	}
	limit = min(limit, maxCampaignListSize)
	customers, err := s.customerRepo.FindWithPending(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	targets := make([]CampaignTarget, 0, len(customers))
	for _, c := range customers {
		if !CanSendCampaign(c.LastCampaignSentAt, now) {
			continue
		}
		targets = append(targets, targetFor(c, now))
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].PriorityScore > targets[j].PriorityScore
	})
	if len(targets) > limit {
		targets = targets[:limit]
	}
	return targets, nil
}

// Inactive lists customers not seen for at least days, skipping anyone
// messaged within the campaign gap.
func (s *customerService) Inactive(ctx context.Context, days int) ([]CampaignTarget, error) {
	if days <= 0 {
		days = inactiveAfterDays
	}
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	targets := make([]CampaignTarget, 0, len(customers))
	for _, c := range customers {
		if DaysSince(c.LastVisitAt, now) < days || !CanSendCampaign(c.LastCampaignSentAt, now) {
			continue
		}
		targets = append(targets, targetFor(c, now))
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].DaysSinceLastVisit > targets[j].DaysSinceLastVisit
	})
	return targets, nil
}

func (s *customerService) MarkCampaignSent(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !CanSendCampaign(c.LastCampaignSentAt, now) {
		return nil, ErrCampaignTooSoon
	}
	if err := s.customerRepo.MarkCampaignSent(ctx, id, now); err != nil {
		return nil, err
	}
	c.LastCampaignSentAt = &now
	return c, nil
}

func targetFor(c model.Customer, now time.Time) CampaignTarget {
	return CampaignTarget{
		Customer:             c,
		DaysSinceLastPayment: DaysSince(c.LastPaymentAt, now),
		DaysSinceLastVisit:   DaysSince(c.LastVisitAt, now),
		PriorityScore:        PendingPriority(c.TotalPendingAmount, c.LastPaymentAt, now),
	}
}

// DaysSince counts whole days from t to now; a missing time counts as 999.
func DaysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return neverDays
	}
	return int(now.Sub(*t).Hours() / hoursPerDay)
}

// PendingPriority is the pending amount in whole rupees times the days
// since the last payment.
func PendingPriority(pending decimal.Decimal, lastPayment *time.Time, now time.Time) int64 {
	return pending.IntPart() * int64(DaysSince(lastPayment, now))
}

// CanSendCampaign reports whether the last campaign is at least seven days old.
func CanSendCampaign(lastSent *time.Time, now time.Time) bool {
	return DaysSince(lastSent, now) >= campaignGapDays
}
