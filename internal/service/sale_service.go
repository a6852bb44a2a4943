package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
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
	ErrCheckoutInProgress = errors.New("a checkout for this customer is already in progress")
	ErrSaleFailed         = errors.New("failed to record sale")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrNothingPending     = errors.New("sale has no pending amount")
)

// walkInKey prefixes the in-flight key for sales without a phone number.
const walkInKey = "walk-in:"

type CartLine struct {
	ProductID    uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Name         string          `json:"name"`
	Qty          int             `json:"qty" validate:"gt=0"`
	CostPrice    decimal.Decimal `json:"cost_price" validate:"gte=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gte=0"`
	CategoryName string          `json:"category_name"`
}

type CheckoutRequest struct {
	CustomerPhone string            `json:"customer_phone" validate:"omitempty,mobile_in"`
	CustomerName  string            `json:"customer_name" validate:"max=255"`
	Items         []CartLine        `json:"items" validate:"required,min=1,dive"`
	PaymentMode   model.PaymentMode `json:"payment_mode" validate:"required,oneof=cash credit partial"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"omitempty,oneof=cash upi card bank"`
}

type SaleService interface {
	Checkout(ctx context.Context, req *CheckoutRequest, actor Actor) (*model.Sale, error)
	PaySale(ctx context.Context, saleID uuid.UUID, req *PaymentRequest, actor Actor) (*model.Sale, error)
	SettleSale(ctx context.Context, saleID uuid.UUID, method string, actor Actor) (*model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, f repository.SaleFilter) ([]model.Sale, error)
	ListPendingSales(ctx context.Context) ([]model.Sale, error)
	ListPayments(ctx context.Context, status model.LedgerStatus) ([]model.Payment, error)
}

type saleService struct {
	db           *gorm.DB
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRepository
	movementRepo repository.StockMovementRepository
	wsHub        *ws.Hub
	checkouts    *inflight
}

func NewSaleService(
	db *gorm.DB,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	movementRepo repository.StockMovementRepository,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		db:           db,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		movementRepo: movementRepo,
		wsHub:        hub,
		checkouts:    newInflight(),
	}
}

// CartTotal sums sellingPrice x qty over the cart.
func CartTotal(items []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.SellingPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}

// SplitPayment derives paid, pending and status for a sale of total.
func SplitPayment(mode model.PaymentMode, total, requested decimal.Decimal) (paid, pending decimal.Decimal, status model.PaymentStatus) {
	switch mode {
	case model.PaymentCash:
		paid = total
	case model.PaymentPartial:
		paid = requested
	default:
		paid = decimal.Zero
	}
	pending = pendingOf(total, paid)
	status = model.PaymentStatusPaid
	if pending.IsPositive() {
		status = model.PaymentStatusPending
	}
	return paid, pending, status
}

func validateCheckout(req *CheckoutRequest) (decimal.Decimal, error) {
	if req == nil || len(req.Items) == 0 {
		return decimal.Zero, invalid("cart is empty")
	}
	if err := validate(req); err != nil {
		return decimal.Zero, err
	}
	if req.CustomerPhone == "" && req.PaymentMode != model.PaymentCash {
		return decimal.Zero, invalid("customer phone is required for credit and partial sales")
	}
	if req.PaymentMode != model.PaymentCash && req.CustomerName == "" {
		return decimal.Zero, invalid("customer name is required for credit and partial sales")
	}

	total := CartTotal(req.Items)
	if req.PaymentMode == model.PaymentPartial {
		if !req.PaidAmount.IsPositive() || req.PaidAmount.GreaterThan(total) {
			return decimal.Zero, invalid("paid amount must be greater than 0 and not exceed the total")
		}
	}
	return total, nil
}

// stockLine is the merged quantity for one product in a cart.
type stockLine struct {
	productID uuid.UUID
	qty       int
}

// mergeCart folds repeated products and orders them by id so concurrent
// checkouts lock rows in the same order.
func mergeCart(items []CartLine) []stockLine {
	byID := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		byID[it.ProductID] += it.Qty
	}
	lines := make([]stockLine, 0, len(byID))
	for id, qty := range byID {
		lines = append(lines, stockLine{productID: id, qty: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].productID.String() < lines[j].productID.String()
	})
	return lines
}

func (s *saleService) Checkout(ctx context.Context, req *CheckoutRequest, actor Actor) (*model.Sale, error) {
	// 1. Validate before any write
	total, err := validateCheckout(req)
	if err != nil {
		return nil, err
	}

	key := req.CustomerPhone
	if key == "" {
		key = walkInKey + actor.ID
	}
	if !s.checkouts.acquire(key) {
		return nil, ErrCheckoutInProgress
	}
	defer s.checkouts.release(key)

	// 2. Resolve customer outside the transaction
	var customer *model.Customer
	if req.CustomerPhone != "" {
		customer, err = resolveCustomer(ctx, s.customerRepo, req.CustomerPhone, req.CustomerName, actor.ID)
		if err != nil {
			log.Printf("checkout: resolve customer %s: %v", req.CustomerPhone, err)
			return nil, fmt.Errorf("%w: %v", ErrSaleFailed, err)
		}
	}

	// 3. Paid / pending split
	paid, pending, status := SplitPayment(req.PaymentMode, total, req.PaidAmount)

	// 4. Persist the sale document
	now := time.Now()
	sale := &model.Sale{
		Date:          now,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		Total:         total,
		PaymentMode:   req.PaymentMode,
		PaidAmount:    paid,
		PendingAmount: pending,
		PaymentStatus: status,
	}
	if customer != nil {
		sale.CustomerID = &customer.ID
		if sale.CustomerName == "" {
			sale.CustomerName = customer.Name
		}
	}
	if status == model.PaymentStatusPaid {
		sale.PaymentCompletedAt = &now
	}
	if actor.ID != "" {
		sale.CreatedByUserID = &actor.ID
	}
	sale.CreatedBy = actor.ID
	sale.UpdatedBy = actor.ID
	for _, it := range req.Items {
		item := model.SaleItem{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Qty:          it.Qty,
			CostPrice:    it.CostPrice,
			SellingPrice: it.SellingPrice,
			CategoryName: it.CategoryName,
		}
		item.CreatedBy = actor.ID
		sale.Items = append(sale.Items, item)
	}
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		log.Printf("checkout: persist sale: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrSaleFailed, err)
	}

	// 5. Stock and customer aggregates in one transaction, reads before writes
	touched, err := s.commitStock(ctx, sale, customer, mergeCart(req.Items), actor)
	if err != nil {
		log.Printf("checkout: sale %s stock transaction: %v", sale.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrSaleFailed, err)
	}

	// 6. Payment ledger, best effort
	s.appendLedger(ctx, sale)

	// 7. Notify
	s.wsHub.Publish(ws.Event{
		Type:   "sale_created",
		Action: "sale_created",
		Data: map[string]interface{}{
			"id":             sale.ID,
			"total":          sale.Total,
			"payment_status": sale.PaymentStatus,
			"customer_phone": sale.CustomerPhone,
		},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s recorded a sale of %s", actor.Name, sale.Total.StringFixed(2)),
	})
	for _, p := range touched {
		s.wsHub.Publish(ws.Event{
			Type:   "stock_update",
			Action: "product_sold",
			Data:   map[string]interface{}{"id": p.ID, "name": p.Name, "stock": p.Stock},
			User:   actor.wsActor(),
		})
	}

	return sale, nil
}

func (s *saleService) commitStock(ctx context.Context, sale *model.Sale, customer *model.Customer, lines []stockLine, actor Actor) ([]model.Product, error) {
	var touched []model.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)
		customers := s.customerRepo.WithTx(tx)
		movements := s.movementRepo.WithTx(tx)

		// Read phase
		type pending struct {
			product *model.Product
			qty     int
		}
		reads := make([]pending, 0, len(lines))
		for _, l := range lines {
			p, err := products.FindByIDForUpdate(ctx, l.productID)
			if database.IsNotFound(err) {
				log.Printf("checkout: sale %s: product %s not found, line skipped", sale.ID, l.productID)
				continue
			}
			if err != nil {
				return err
			}
			reads = append(reads, pending{product: p, qty: l.qty})
		}

		var cust *model.Customer
		if customer != nil {
			c, err := customers.FindByIDForUpdate(ctx, customer.ID)
			if err != nil && !database.IsNotFound(err) {
				return err
			}
			cust = c
		}

		// Write phase
		now := time.Now()
		for _, r := range reads {
			p := r.product
			p.Stock = max(0, p.Stock-r.qty)
			p.SalesCount += r.qty
			p.LastSoldAt = &now
			if err := products.ApplySale(ctx, p.ID, p.Stock, p.SalesCount, now, actor.ID); err != nil {
				return err
			}
			move := &model.StockMovement{
				ProductID: p.ID,
				Type:      model.MovementOut,
				Quantity:  r.qty,
				SourceID:  sale.ID,
				StockLeft: p.Stock,
			}
			move.CreatedBy = actor.ID
			if err := movements.Create(ctx, move); err != nil {
				return err
			}
			touched = append(touched, *p)
		}

		if cust != nil {
			purchases := cust.TotalPurchases.Add(sale.Total)
			pendingTotal := cust.TotalPendingAmount.Add(sale.PendingAmount)
			if err := customers.UpdateTotals(ctx, cust.ID, purchases, pendingTotal, now); err != nil {
				return err
			}
			if sale.PaidAmount.IsPositive() {
				if err := customers.TouchLastPayment(ctx, cust.ID, now); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}

func (s *saleService) appendLedger(ctx context.Context, sale *model.Sale) {
	status := model.LedgerCompleted
	if sale.PendingAmount.IsPositive() {
		status = model.LedgerPending
	}
	payment := &model.Payment{
		SaleID:        &sale.ID,
		CustomerID:    sale.CustomerID,
		CustomerPhone: sale.CustomerPhone,
		Amount:        sale.Total,
		PaidAmount:    sale.PaidAmount,
		PendingAmount: sale.PendingAmount,
		Method:        string(sale.PaymentMode),
		Status:        status,
	}
	payment.CreatedBy = sale.CreatedBy
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		log.Printf("checkout: sale %s: payment ledger write failed: %v", sale.ID, err)
	}
}

func (s *saleService) PaySale(ctx context.Context, saleID uuid.UUID, req *PaymentRequest, actor Actor) (*model.Sale, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = string(model.PaymentCash)
	}

	var updated *model.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sales := s.saleRepo.WithTx(tx)
		customers := s.customerRepo.WithTx(tx)

		sale, err := sales.FindByIDForUpdate(ctx, saleID)
		if database.IsNotFound(err) {
			return ErrSaleNotFound
		}
		if err != nil {
			return err
		}
		if !sale.PendingAmount.IsPositive() {
			return ErrNothingPending
		}

		var cust *model.Customer
		if sale.CustomerID != nil {
			c, err := customers.FindByIDForUpdate(ctx, *sale.CustomerID)
			if err != nil && !database.IsNotFound(err) {
				return err
			}
			cust = c
		}

		now := time.Now()
		sale.PaidAmount = sale.PaidAmount.Add(req.Amount)
		sale.PendingAmount = pendingOf(sale.PendingAmount, req.Amount)
		sale.PaymentStatus = model.PaymentStatusPartial
		if !sale.PendingAmount.IsPositive() {
			sale.PaymentStatus = model.PaymentStatusPaid
			sale.PaymentCompletedAt = &now
		}
		sale.UpdatedBy = actor.ID
		if err := sales.UpdatePayment(ctx, sale); err != nil {
			return err
		}

		if cust != nil {
			if err := customers.UpdatePending(ctx, cust.ID, pendingOf(cust.TotalPendingAmount, req.Amount), now); err != nil {
				return err
			}
		}

		payment := &model.Payment{
			SaleID:        &sale.ID,
			CustomerID:    sale.CustomerID,
			CustomerPhone: sale.CustomerPhone,
			Amount:        req.Amount,
			PaidAmount:    sale.PaidAmount,
			PendingAmount: sale.PendingAmount,
			Method:        method,
			Status:        model.LedgerCompleted,
		}
		payment.CreatedBy = actor.ID
		if err := s.paymentRepo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:    "payment",
		Action:  "sale_payment",
		Data:    map[string]interface{}{"sale_id": updated.ID, "amount": req.Amount, "pending_amount": updated.PendingAmount},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s collected %s", actor.Name, req.Amount.StringFixed(2)),
	})
	return updated, nil
}

// SettleSale collects the whole remaining balance.
func (s *saleService) SettleSale(ctx context.Context, saleID uuid.UUID, method string, actor Actor) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if database.IsNotFound(err) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	if !sale.PendingAmount.IsPositive() {
		return nil, ErrNothingPending
	}
	return s.PaySale(ctx, saleID, &PaymentRequest{Amount: sale.PendingAmount, Method: method}, actor)
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrSaleNotFound
	}
	return sale, err
}

func (s *saleService) ListSales(ctx context.Context, f repository.SaleFilter) ([]model.Sale, error) {
	return s.saleRepo.FindByFilter(ctx, f)
}

func (s *saleService) ListPendingSales(ctx context.Context) ([]model.Sale, error) {
	return s.saleRepo.FindByFilter(ctx, repository.SaleFilter{PendingOnly: true})
}

func (s *saleService) ListPayments(ctx context.Context, status model.LedgerStatus) ([]model.Payment, error) {
	return s.paymentRepo.FindByStatus(ctx, status)
}
