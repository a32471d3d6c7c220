package billing

import "github.com/jrsteele09/billing-admin/users"

// Remote resource paths
const (
	devicePath      = "/api/device"
	categoryPath    = "/api/category"
	transactionPath = "/api/transaction"
	userPath        = "/api/user"
	dashboardPath   = "/api/dashboard/admin"
)

// Category is a pricing tier, e.g. "VIP" for "60 Menit" at 15000.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Period string `json:"period"` // Free text such as "60 Menit" or "Paket Malam"
	Price  int64  `json:"price"`  // Whole rupiah
}

// CategoryInput is the body used to create or replace a category
type CategoryInput struct {
	Name   string `json:"name" validate:"required"`
	Period string `json:"period" validate:"required"`
	Price  int64  `json:"price" validate:"gte=0"`
}

// Device is a rentable PC or console station
type Device struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	TimeRemaining string `json:"timeRemaining"`
	RentalPrice   int64  `json:"rentalPrice"`
}

// Transaction is one entry of the income history
type Transaction struct {
	ID         int64  `json:"id"`
	DeviceName string `json:"deviceName"`
	Category   string `json:"category"`
	RentalTime string `json:"rentalTime"` // e.g. "10:00 - 12:00"
	Price      int64  `json:"price"`
}

// NewUserInput creates a console account
type NewUserInput struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required"`
	Type     users.RoleType `json:"type" validate:"required,oneof=user admin"`
}

// BlockResult is the outcome of a block or unblock call
type BlockResult struct {
	IsActive bool   `json:"isActive"`
	Message  string `json:"message,omitempty"`
}

// Dashboard is the admin summary shown on the home screen.
type Dashboard struct {
	TotalDevices    int   `json:"totalDevices"`
	ActiveDevices   int   `json:"activeDevices"`
	TotalCategories int   `json:"totalCategories"`
	TotalUsers      int   `json:"totalUsers"`
	TodayIncome     int64 `json:"todayIncome"`
	MonthIncome     int64 `json:"monthIncome"`
}

// TotalIncome sums the price of every transaction
func TotalIncome(txs []Transaction) int64 {
	var total int64
	for _, tx := range txs {
		total += tx.Price
	}
	return total
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}
