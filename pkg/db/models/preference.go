package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseEntry is one recurring-expense line in a user's preferences.
type ExpenseEntry struct {
	ID     int64           `json:"id"`
	Desc   string          `json:"desc"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// SupplierEntry is one saved supplier contact.
type SupplierEntry struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Adresse string `json:"adresse"`
	Phone   string `json:"phone"`
}

// Preference holds the per-user settings document. One row per owner,
// created lazily on first save and merged on every subsequent save.
type Preference struct {
	OwnerID      uuid.UUID       `gorm:"column:owner_id;type:uuid;primaryKey"`
	MonthlyGoal  decimal.Decimal `gorm:"column:monthly_goal;type:numeric;not null;default:500"`
	Expenses     []ExpenseEntry  `gorm:"column:expenses;serializer:json"`
	Fournisseurs []SupplierEntry `gorm:"column:fournisseurs;serializer:json"`
	DarkMode     bool            `gorm:"column:dark_mode;not null;default:false"`
	ThemeColor   string          `gorm:"column:theme_color"`
	SKUPrefix    string          `gorm:"column:sku_prefix;not null;default:'P'"`
	SKUCounter   int             `gorm:"column:sku_counter;not null;default:1"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (Preference) TableName() string {
	return "preferences"
}
