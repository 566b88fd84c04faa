package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/huandz/freshmart/internal/domain/cart"
	"github.com/huandz/freshmart/internal/domain/order"
	"github.com/huandz/freshmart/internal/domain/promo"
)

// Service creates checkout sessions over the cart, order, and promo stores.
type Service struct {
	cart   *cart.Service
	orders *order.Service
	promos promo.Validator
}

// NewService constructs a checkout Service with its domain dependencies.
func NewService(cart *cart.Service, orders *order.Service, promos promo.Validator) *Service {
	return &Service{cart: cart, orders: orders, promos: promos}
}

// Begin opens a session for the current cart contents. An empty cart cannot
// be checked out.
func (s *Service) Begin(_ context.Context) (*Session, error) {
	if len(s.cart.Items()) == 0 {
		return nil, ErrEmptyCart
	}
	return &Session{svc: s}, nil
}

// ConfirmRequest carries the buyer's choices for the final step.
type ConfirmRequest struct {
	Address  string
	Shipping ShippingMethod
	Payment  PaymentMethod
}

// Request is the one-shot form of the flow: begin, optionally apply a code,
// confirm.
type Request struct {
	ConfirmRequest
	PromoCode string
}

// Checkout runs the whole flow in one call.
func (s *Service) Checkout(ctx context.Context, req Request) (*order.Order, error) {
	session, err := s.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if req.PromoCode != "" {
		if _, err := session.ApplyPromo(ctx, req.PromoCode); err != nil {
			return nil, err
		}
	}
	return session.Confirm(ctx, req.ConfirmRequest)
}

// Session is one checkout attempt. At most one discount code can be applied
// per session, and a session confirms at most once.
type Session struct {
	svc *Service

	mu        sync.Mutex
	promoCode string
	confirmed bool
}

// ApplyPromo validates the code against the current pre-shipping subtotal
// and remembers it for confirmation. A second call is rejected regardless of
// the code.
func (s *Session) ApplyPromo(ctx context.Context, code string) (*promo.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.promoCode != "" {
		return nil, ErrPromoApplied
	}

	d, err := s.svc.promos.Validate(ctx, code, s.svc.cart.TotalPrice())
	if err != nil {
		return nil, err
	}
	s.promoCode = code
	return d, nil
}

// Quote prices the session against the live cart for the chosen shipping
// tier.
func (s *Session) Quote(ctx context.Context, shipping ShippingMethod) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote(ctx, shipping)
}

// quote requires s.mu to be held.
func (s *Session) quote(ctx context.Context, shipping ShippingMethod) (*Quote, error) {
	subtotal := s.svc.cart.TotalPrice()

	discount := decimal.Zero
	if s.promoCode != "" {
		d, err := s.svc.promos.Validate(ctx, s.promoCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = d.Amount
	}

	fee := shipping.Fee()
	return &Quote{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Discount:    discount,
		Total:       subtotal.Add(fee).Sub(discount),
	}, nil
}

// Confirm runs the final step: address validation, pricing, payment, order
// creation, cart clearing. Any failure before the payment debit leaves every
// store untouched.
func (s *Session) Confirm(ctx context.Context, req ConfirmRequest) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.confirmed {
		return nil, ErrSessionClosed
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, ErrMissingAddress
	}
	shipping := req.Shipping
	if !shipping.Valid() {
		shipping = ShippingStandard
	}
	payment := req.Payment
	if !payment.Valid() {
		payment = PaymentBalance
	}

	items := s.svc.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	q, err := s.quote(ctx, shipping)
	if err != nil {
		return nil, err
	}

	if payment == PaymentBalance {
		balance := s.svc.orders.Balance()
		if balance.LessThan(q.Total) {
			return nil, &InsufficientBalanceError{Required: q.Total, Available: balance}
		}
		s.svc.orders.UpdateBalance(ctx, q.Total.Neg())
	}

	o := s.svc.orders.AddOrder(ctx, order.Draft{
		Items:          items,
		Total:          q.Total,
		Address:        strings.TrimSpace(req.Address),
		ShippingMethod: shipping.Label(),
		PaymentMethod:  payment.Label(),
		Discount:       q.Discount,
	})
	s.svc.cart.Clear(ctx)
	s.confirmed = true
	return o, nil
}
