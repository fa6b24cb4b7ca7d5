package common

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty 解析難度字串，無法辨識時回退為 Medium
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// RecipeRequest 食譜生成請求參數
type RecipeRequest struct {
	Ingredients         []string `json:"ingredients" binding:"required,min=1,dive,required"`
	Cuisine             string   `json:"cuisine,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	CookingTime         int      `json:"cooking_time,omitempty" binding:"omitempty,min=1,max=480"`
}

// UserQuery 組出存檔用的請求摘要
func (r RecipeRequest) UserQuery() string {
	var b strings.Builder
	b.WriteString("Ingredients: ")
	b.WriteString(strings.Join(r.Ingredients, ", "))
	if r.Cuisine != "" {
		b.WriteString(", Cuisine: ")
		b.WriteString(r.Cuisine)
	}
	if len(r.DietaryRestrictions) > 0 {
		b.WriteString(", Restrictions: ")
		b.WriteString(strings.Join(r.DietaryRestrictions, ", "))
	}
	return b.String()
}

// Recipe 食譜，存檔後不可變
type Recipe struct {
	RecipeID     string     `json:"recipe_id" db:"recipe_id"`
	Title        string     `json:"title" db:"title"`
	Ingredients  []string   `json:"ingredients" db:"-"`
	Instructions []string   `json:"instructions" db:"-"`
	CookingTime  int        `json:"cooking_time" db:"cooking_time"`
	Difficulty   Difficulty `json:"difficulty" db:"difficulty"`
	UserQuery    string     `json:"user_query,omitempty" db:"user_query"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// PaymentStatus 系統內部宣告的付款狀態
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// ProviderStatus 付款供應商（Razorpay）回報的狀態
type ProviderStatus string

const (
	ProviderCreated    ProviderStatus = "created"
	ProviderAuthorized ProviderStatus = "authorized"
	ProviderCaptured   ProviderStatus = "captured"
	ProviderRefunded   ProviderStatus = "refunded"
	ProviderFailed     ProviderStatus = "failed"
)

// Translate 將供應商狀態轉為內部狀態
func (s ProviderStatus) Translate() PaymentStatus {
	switch s {
	case ProviderCaptured:
		return PaymentSuccess
	case ProviderFailed:
		return PaymentFailed
	case ProviderRefunded:
		return PaymentCancelled
	default:
		return PaymentPending
	}
}

// Payment 付款紀錄
type Payment struct {
	PaymentID      string         `json:"payment_id" db:"payment_id"`
	Amount         float64        `json:"amount" db:"amount"`
	Currency       string         `json:"currency" db:"currency"`
	CustomerPhone  string         `json:"customer_phone" db:"customer_phone"`
	Status         PaymentStatus  `json:"status" db:"status"`
	ProviderStatus ProviderStatus `json:"provider_status,omitempty" db:"provider_status"`
	Description    string         `json:"description" db:"description"`
	UPIReference   string         `json:"upi_reference,omitempty" db:"upi_reference"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// User 使用者帳號
type User struct {
	PhoneNumber   string     `json:"phone_number" db:"phone_number"`
	Name          string     `json:"name,omitempty" db:"name"`
	IsPremium     bool       `json:"is_premium" db:"is_premium"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty" db:"premium_expiry"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// FormatAmount 以兩位小數格式化金額，整數金額不帶小數
func FormatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("%d", int64(amount))
	}
	return fmt.Sprintf("%.2f", amount)
}
