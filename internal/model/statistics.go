package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryStat is one group-by row of invoice sums per category,
// ordered by TotalSum descending.
type CategoryStat struct {
	CategoryID    uuid.UUID       `gorm:"column:category_id" json:"category_id"`
	CategoryName  string          `gorm:"column:category_name" json:"category_name"`
	CategoryColor string          `gorm:"column:category_color" json:"category_color"`
	InvoiceCount  int64           `gorm:"column:invoice_count" json:"invoice_count"`
	NetSum        decimal.Decimal `gorm:"column:net_sum" json:"net_sum"`
	TotalSum      decimal.Decimal `gorm:"column:total_sum" json:"total_sum"`
}

// ClientStat is one group-by row of invoice sums per client,
// ordered by TotalSum descending.
type ClientStat struct {
	ClientID     uuid.UUID       `gorm:"column:client_id" json:"client_id"`
	ClientName   string          `gorm:"column:client_name" json:"client_name"`
	InvoiceCount int64           `gorm:"column:invoice_count" json:"invoice_count"`
	NetSum       decimal.Decimal `gorm:"column:net_sum" json:"net_sum"`
	TotalSum     decimal.Decimal `gorm:"column:total_sum" json:"total_sum"`
}

// StatisticsResponse aggregates invoice totals, counts and rankings for the
// dashboard over a bounded period.
type StatisticsResponse struct {
	InvoiceCount       int64           `json:"invoice_count"`
	PaidCount          int64           `json:"paid_count"`
	UnpaidCount        int64           `json:"unpaid_count"`
	NetTotal           decimal.Decimal `json:"net_total"`
	TaxTotal           decimal.Decimal `json:"tax_total"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	UnpaidTotal        decimal.Decimal `json:"unpaid_total"`
	ByCategory         []CategoryStat  `json:"by_category"`
	ByClient           []ClientStat    `json:"by_client"`
	TopClients         []ClientStat    `json:"top_clients"`
	TopCategories      []CategoryStat  `json:"top_categories"`
	TimeRangeStartDate time.Time       `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time       `json:"time_range_end_date"`
}
