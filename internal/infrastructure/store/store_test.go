package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-bot/internal/pkg/common"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestRecipeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &common.Recipe{
		RecipeID:     "recipe_0000aaaa",
		Title:        "Fried Rice",
		Ingredients:  []string{"rice", "egg"},
		Instructions: []string{"Cook rice", "Fry"},
		CookingTime:  20,
		Difficulty:   common.DifficultyEasy,
		UserQuery:    "Ingredients: rice, egg",
	}
	require.NoError(t, s.SaveRecipe(ctx, r))
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.GetRecipe(ctx, r.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, r.Title, got.Title)
	assert.Equal(t, r.Ingredients, got.Ingredients)
	assert.Equal(t, r.Instructions, got.Instructions)
	assert.Equal(t, common.DifficultyEasy, got.Difficulty)
	assert.Equal(t, 20, got.CookingTime)

	assert.Error(t, s.SaveRecipe(ctx, r), "recipes are immutable once saved")

	_, err = s.GetRecipe(ctx, "recipe_missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListRecentRecipes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"recipe_1", "recipe_2", "recipe_3"} {
		require.NoError(t, s.SaveRecipe(ctx, &common.Recipe{
			RecipeID:   id,
			Title:      id,
			Difficulty: common.DifficultyMedium,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recipes, err := s.ListRecentRecipes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "recipe_3", recipes[0].RecipeID)
	assert.Equal(t, "recipe_2", recipes[1].RecipeID)
	assert.Empty(t, recipes[0].Ingredients)
}

func TestPaymentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &common.Payment{
		PaymentID:      "order_abc",
		Amount:         100,
		Currency:       "INR",
		CustomerPhone:  "919876543210",
		Status:         common.PaymentPending,
		ProviderStatus: common.ProviderCreated,
		Description:    "Recipe Premium Access",
	}
	require.NoError(t, s.SavePayment(ctx, p))

	pending, err := s.ListPendingPayments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	promoted, err := s.UpdatePaymentStatus(ctx, "order_abc", common.ProviderCaptured, "123456789012")
	require.NoError(t, err)
	assert.True(t, promoted)

	got, err := s.GetPayment(ctx, "order_abc")
	require.NoError(t, err)
	assert.Equal(t, common.PaymentSuccess, got.Status)
	assert.Equal(t, common.ProviderCaptured, got.ProviderStatus)
	assert.Equal(t, "123456789012", got.UPIReference)
	assert.Equal(t, 100.0, got.Amount)

	// 已是 success 的付款不會再次轉換
	promoted, err = s.UpdatePaymentStatus(ctx, "order_abc", common.ProviderCaptured, "")
	require.NoError(t, err)
	assert.False(t, promoted)

	// 空的 UPI reference 不覆蓋既有值
	promoted, err = s.UpdatePaymentStatus(ctx, "order_abc", common.ProviderRefunded, "")
	require.NoError(t, err)
	assert.False(t, promoted)
	got, err = s.GetPayment(ctx, "order_abc")
	require.NoError(t, err)
	assert.Equal(t, common.PaymentCancelled, got.Status)
	assert.Equal(t, "123456789012", got.UPIReference)

	pending, err = s.ListPendingPayments(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = s.UpdatePaymentStatus(ctx, "order_missing", common.ProviderCaptured, "")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListPaymentsByPhone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"order_1", "order_2"} {
		require.NoError(t, s.SavePayment(ctx, &common.Payment{
			PaymentID: id, Amount: 100, Currency: "INR", CustomerPhone: "111",
			Status: common.PaymentPending, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.SavePayment(ctx, &common.Payment{
		PaymentID: "order_other", Amount: 100, Currency: "INR", CustomerPhone: "222", Status: common.PaymentPending,
	}))

	payments, err := s.ListPaymentsByPhone(ctx, "111", 5)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "order_2", payments[0].PaymentID)

	none, err := s.ListPaymentsByPhone(ctx, "999", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "919876543210")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	created, err := s.EnsureUser(ctx, &common.User{PhoneNumber: "919876543210"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureUser(ctx, &common.User{PhoneNumber: "919876543210"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := s.GetUser(ctx, "919876543210")
	require.NoError(t, err)
	assert.False(t, u.IsPremium)
	assert.Nil(t, u.PremiumExpiry)

	until := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkPremium(ctx, "919876543210", until))
	require.NoError(t, s.MarkPremium(ctx, "new-user", until))

	u, err = s.GetUser(ctx, "919876543210")
	require.NoError(t, err)
	assert.True(t, u.IsPremium)
	require.NotNil(t, u.PremiumExpiry)
	assert.True(t, until.Equal(*u.PremiumExpiry))

	u, err = s.GetUser(ctx, "new-user")
	require.NoError(t, err)
	assert.True(t, u.IsPremium)

	assert.NoError(t, s.Ping(ctx))
}
