package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/internal/domain/cart"
	"github.com/huandz/freshmart/internal/domain/order"
	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/domain/promo"
	"github.com/huandz/freshmart/internal/storage/kv"
)

type staticPromoRepo struct{}

func (staticPromoRepo) FindByCode(_ context.Context, code string) (*promo.Rule, error) {
	for _, r := range promo.DefaultRules() {
		if r.Code == code {
			return &r, nil
		}
	}
	return nil, promo.ErrInvalidCode
}

type fixture struct {
	cart     *cart.Service
	orders   *order.Service
	checkout *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemory()
	lg := zap.NewNop()

	c, err := cart.NewService(ctx, store, lg)
	require.NoError(t, err)
	o, err := order.NewService(ctx, store, lg, order.Config{})
	require.NoError(t, err)

	return &fixture{
		cart:     c,
		orders:   o,
		checkout: NewService(c, o, promo.NewRepoValidator(staticPromoRepo{})),
	}
}

func (f *fixture) fill(ctx context.Context) {
	f.cart.AddItem(ctx, product.Product{ID: 1, Name: "Salmon", Price: decimal.NewFromInt(100000)}, 2)
	f.cart.AddItem(ctx, product.Product{ID: 2, Name: "Rice", Price: decimal.NewFromInt(50000)}, 1)
}

func TestBegin_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Begin(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestQuote_DiscountAndShipping(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	session, err := f.checkout.Begin(ctx)
	require.NoError(t, err)

	d, err := session.ApplyPromo(ctx, "HUANDZ")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25000).Equal(d.Amount))

	q, err := session.Quote(ctx, ShippingStandard)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250000).Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(30000).Equal(q.ShippingFee))
	assert.True(t, decimal.NewFromInt(25000).Equal(q.Discount))
	assert.True(t, decimal.NewFromInt(255000).Equal(q.Total))

	q, err = session.Quote(ctx, ShippingExpress)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(275000).Equal(q.Total))
}

func TestApplyPromo_OncePerSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	session, err := f.checkout.Begin(ctx)
	require.NoError(t, err)

	_, err = session.ApplyPromo(ctx, "HUANDZ")
	require.NoError(t, err)

	_, err = session.ApplyPromo(ctx, "HUANDZ")
	assert.ErrorIs(t, err, ErrPromoApplied)

	// A fresh session may apply the code again.
	other, err := f.checkout.Begin(ctx)
	require.NoError(t, err)
	_, err = other.ApplyPromo(ctx, "HUANDZ")
	assert.NoError(t, err)
}

func TestApplyPromo_InvalidCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	session, err := f.checkout.Begin(ctx)
	require.NoError(t, err)

	_, err = session.ApplyPromo(ctx, "BOGUS")
	assert.ErrorIs(t, err, promo.ErrInvalidCode)

	// A rejected code does not consume the session's single application.
	_, err = session.ApplyPromo(ctx, "HUANDZ")
	assert.NoError(t, err)
}

func TestConfirm_FullFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	o, err := f.checkout.Checkout(ctx, Request{
		ConfirmRequest: ConfirmRequest{
			Address:  "  12 Market St  ",
			Shipping: ShippingStandard,
			Payment:  PaymentBalance,
		},
		PromoCode: "HUANDZ",
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(255000).Equal(o.Total))
	assert.True(t, decimal.NewFromInt(25000).Equal(o.Discount))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "12 Market St", o.Address)
	assert.Equal(t, ShippingStandard.Label(), o.ShippingMethod)
	assert.Equal(t, PaymentBalance.Label(), o.PaymentMethod)
	require.Len(t, o.Items, 2)

	// Balance debited, cart cleared, order listed.
	assert.True(t, order.DefaultSeedBalance.Sub(decimal.NewFromInt(255000)).Equal(f.orders.Balance()))
	assert.Empty(t, f.cart.Items())
	require.Len(t, f.orders.Orders(), 1)
}

func TestConfirm_QRDoesNotTouchBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	_, err := f.checkout.Checkout(ctx, Request{
		ConfirmRequest: ConfirmRequest{
			Address:  "12 Market St",
			Shipping: ShippingExpress,
			Payment:  PaymentQR,
		},
	})
	require.NoError(t, err)
	assert.True(t, order.DefaultSeedBalance.Equal(f.orders.Balance()))
}

func TestConfirm_MissingAddressHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	for _, address := range []string{"", "   ", "\t\n"} {
		_, err := f.checkout.Checkout(ctx, Request{
			ConfirmRequest: ConfirmRequest{Address: address, Payment: PaymentBalance},
		})
		assert.ErrorIs(t, err, ErrMissingAddress)
	}

	assert.Empty(t, f.orders.Orders())
	assert.True(t, order.DefaultSeedBalance.Equal(f.orders.Balance()))
	assert.Len(t, f.cart.Items(), 2)
}

func TestConfirm_InsufficientBalanceHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)
	// Drain the balance below the order total.
	f.orders.UpdateBalance(ctx, decimal.NewFromInt(-4_900_000))

	_, err := f.checkout.Checkout(ctx, Request{
		ConfirmRequest: ConfirmRequest{
			Address:  "12 Market St",
			Shipping: ShippingStandard,
			Payment:  PaymentBalance,
		},
	})

	var ibErr *InsufficientBalanceError
	require.ErrorAs(t, err, &ibErr)
	assert.True(t, decimal.NewFromInt(180000).Equal(ibErr.Shortfall()), "got %s", ibErr.Shortfall())

	assert.Empty(t, f.orders.Orders())
	assert.True(t, decimal.NewFromInt(100000).Equal(f.orders.Balance()))
	assert.Len(t, f.cart.Items(), 2)
}

func TestConfirm_SessionConfirmsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(ctx)

	session, err := f.checkout.Begin(ctx)
	require.NoError(t, err)

	req := ConfirmRequest{Address: "12 Market St", Shipping: ShippingStandard, Payment: PaymentQR}
	_, err = session.Confirm(ctx, req)
	require.NoError(t, err)

	_, err = session.Confirm(ctx, req)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, f.orders.Orders(), 1)
}
