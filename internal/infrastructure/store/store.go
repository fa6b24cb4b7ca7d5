package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"recipe-bot/internal/pkg/common"
)

// Store 資料存取介面
type Store interface {
	SaveRecipe(ctx context.Context, r *common.Recipe) error
	GetRecipe(ctx context.Context, recipeID string) (*common.Recipe, error)
	ListRecentRecipes(ctx context.Context, limit int) ([]common.Recipe, error)

	SavePayment(ctx context.Context, p *common.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*common.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID string, provider common.ProviderStatus, upiReference string) (bool, error)
	ListPaymentsByPhone(ctx context.Context, phone string, limit int) ([]common.Payment, error)
	ListPendingPayments(ctx context.Context, limit int) ([]common.Payment, error)

	GetUser(ctx context.Context, phone string) (*common.User, error)
	EnsureUser(ctx context.Context, u *common.User) (bool, error)
	MarkPremium(ctx context.Context, phone string, until time.Time) error

	Ping(ctx context.Context) error
	Close() error
}

// SQLStore 以 sqlx 實作的 Store
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// New 包裝既有連線
func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type recipeRow struct {
	RecipeID     string    `db:"recipe_id"`
	Title        string    `db:"title"`
	Ingredients  string    `db:"ingredients"`
	Instructions string    `db:"instructions"`
	CookingTime  int       `db:"cooking_time"`
	Difficulty   string    `db:"difficulty"`
	UserQuery    string    `db:"user_query"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row recipeRow) toRecipe() (*common.Recipe, error) {
	r := &common.Recipe{
		RecipeID:    row.RecipeID,
		Title:       row.Title,
		CookingTime: row.CookingTime,
		Difficulty:  common.Difficulty(row.Difficulty),
		UserQuery:   row.UserQuery,
		CreatedAt:   row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.Ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients of %s: %w", row.RecipeID, err)
	}
	if err := json.Unmarshal([]byte(row.Instructions), &r.Instructions); err != nil {
		return nil, fmt.Errorf("decode instructions of %s: %w", row.RecipeID, err)
	}
	return r, nil
}

// SaveRecipe 新增食譜，食譜存檔後不再修改
func (s *SQLStore) SaveRecipe(ctx context.Context, r *common.Recipe) error {
	ingredients, err := json.Marshal(nonNil(r.Ingredients))
	if err != nil {
		return fmt.Errorf("encode ingredients: %w", err)
	}
	instructions, err := json.Marshal(nonNil(r.Instructions))
	if err != nil {
		return fmt.Errorf("encode instructions: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO recipes (recipe_id, title, ingredients, instructions, cooking_time, difficulty, user_query, created_at)
		VALUES (:recipe_id, :title, :ingredients, :instructions, :cooking_time, :difficulty, :user_query, :created_at)`,
		recipeRow{
			RecipeID:     r.RecipeID,
			Title:        r.Title,
			Ingredients:  string(ingredients),
			Instructions: string(instructions),
			CookingTime:  r.CookingTime,
			Difficulty:   string(r.Difficulty),
			UserQuery:    r.UserQuery,
			CreatedAt:    r.CreatedAt,
		})
	if err != nil {
		return fmt.Errorf("save recipe %s: %w", r.RecipeID, err)
	}
	return nil
}

// GetRecipe 依 ID 取得食譜，不存在時回傳 common.ErrNotFound
func (s *SQLStore) GetRecipe(ctx context.Context, recipeID string) (*common.Recipe, error) {
	var row recipeRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM recipes WHERE recipe_id = ?`, recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %s: %w", recipeID, err)
	}
	return row.toRecipe()
}

// ListRecentRecipes 取得最新的食譜
func (s *SQLStore) ListRecentRecipes(ctx context.Context, limit int) ([]common.Recipe, error) {
	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM recipes ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	recipes := make([]common.Recipe, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRecipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *r)
	}
	return recipes, nil
}

// SavePayment 新增付款紀錄
func (s *SQLStore) SavePayment(ctx context.Context, p *common.Payment) error {
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (payment_id, amount, currency, customer_phone, status, provider_status, description, upi_reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PaymentID, p.Amount, p.Currency, p.CustomerPhone, string(p.Status), string(p.ProviderStatus),
		p.Description, p.UPIReference, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save payment %s: %w", p.PaymentID, err)
	}
	return nil
}

// GetPayment 依 ID 取得付款紀錄
func (s *SQLStore) GetPayment(ctx context.Context, paymentID string) (*common.Payment, error) {
	var p common.Payment
	err := s.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE payment_id = ?`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", paymentID, err)
	}
	return &p, nil
}

// UpdatePaymentStatus 以供應商狀態更新，同時寫入轉換後的內部狀態。
// 回傳值為 true 表示這次呼叫使該筆付款轉為 success。
func (s *SQLStore) UpdatePaymentStatus(ctx context.Context, paymentID string, provider common.ProviderStatus, upiReference string) (bool, error) {
	status := provider.Translate()
	if status == common.PaymentSuccess {
		// 條件式更新，同一筆付款只會有一個呼叫者取得轉換
		res, err := s.db.ExecContext(ctx, `
			UPDATE payments
			SET status = ?, provider_status = ?, upi_reference = COALESCE(NULLIF(?, ''), upi_reference), updated_at = ?
			WHERE payment_id = ? AND status != ?`,
			string(status), string(provider), upiReference, s.now(), paymentID, string(common.PaymentSuccess))
		if err != nil {
			return false, fmt.Errorf("update payment %s: %w", paymentID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			return true, nil
		}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE payments
		SET status = ?, provider_status = ?, upi_reference = COALESCE(NULLIF(?, ''), upi_reference), updated_at = ?
		WHERE payment_id = ?`,
		string(status), string(provider), upiReference, s.now(), paymentID)
	if err != nil {
		return false, fmt.Errorf("update payment %s: %w", paymentID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, common.ErrNotFound
	}
	return false, nil
}

// ListPaymentsByPhone 取得使用者的付款紀錄，新的在前
func (s *SQLStore) ListPaymentsByPhone(ctx context.Context, phone string, limit int) ([]common.Payment, error) {
	payments := []common.Payment{}
	if err := s.db.SelectContext(ctx, &payments,
		`SELECT * FROM payments WHERE customer_phone = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, phone, limit); err != nil {
		return nil, fmt.Errorf("list payments for phone: %w", err)
	}
	return payments, nil
}

// ListPendingPayments 取得尚待確認的付款，舊的在前
func (s *SQLStore) ListPendingPayments(ctx context.Context, limit int) ([]common.Payment, error) {
	payments := []common.Payment{}
	if err := s.db.SelectContext(ctx, &payments,
		`SELECT * FROM payments WHERE status = ? ORDER BY created_at ASC LIMIT ?`, string(common.PaymentPending), limit); err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	return payments, nil
}

// GetUser 取得使用者，不存在時回傳 common.ErrNotFound
func (s *SQLStore) GetUser(ctx context.Context, phone string) (*common.User, error) {
	var u common.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE phone_number = ?`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// EnsureUser 使用者不存在時建立，回傳是否為新建立
func (s *SQLStore) EnsureUser(ctx context.Context, u *common.User) (bool, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	res, err := s.db.NamedExecContext(ctx, `
		INSERT OR IGNORE INTO users (phone_number, name, is_premium, premium_expiry, created_at)
		VALUES (:phone_number, :name, :is_premium, :premium_expiry, :created_at)`, u)
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}
	return n > 0, nil
}

// MarkPremium 在交易中建立或升級使用者為付費會員
func (s *SQLStore) MarkPremium(ctx context.Context, phone string, until time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (phone_number, name, is_premium, created_at) VALUES (?, '', 0, ?)`,
		phone, s.now()); err != nil {
		return fmt.Errorf("create user for premium: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET is_premium = 1, premium_expiry = ? WHERE phone_number = ?`,
		until.UTC(), phone); err != nil {
		return fmt.Errorf("mark premium: %w", err)
	}
	return tx.Commit()
}

// Ping 檢查連線
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉連線
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
