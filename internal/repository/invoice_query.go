package repository

import (
	"time"

	"facturation/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type scopeFunc func(*gorm.DB) *gorm.DB

// InvoiceQuery is a fluent, composable query over the invoice collection.
// Each filter returns a new value holding the accumulated predicates, so a
// partially built query can be reused and extended without affecting its
// ancestors. Filters compose by AND. Aggregate terminals return zero values
// on an empty set, never an error; filtering by an unknown client or
// category id simply yields an empty result.
type InvoiceQuery struct {
	db          *gorm.DB
	scopes      []scopeFunc
	joinClients bool
}

func NewInvoiceQuery(db *gorm.DB) InvoiceQuery {
	return InvoiceQuery{db: db}
}

func (q InvoiceQuery) with(s scopeFunc) InvoiceQuery {
	scopes := make([]scopeFunc, len(q.scopes), len(q.scopes)+1)
	copy(scopes, q.scopes)
	q.scopes = append(scopes, s)
	return q
}

// Paid keeps invoices flagged as paid.
func (q InvoiceQuery) Paid() InvoiceQuery {
	return q.with(func(db *gorm.DB) *gorm.DB {
		return db.Where("invoices.paid = ?", true)
	})
}

// Unpaid keeps invoices not yet paid.
func (q InvoiceQuery) Unpaid() InvoiceQuery {
	return q.with(func(db *gorm.DB) *gorm.DB {
		return db.Where("invoices.paid = ?", false)
	})
}

// ByClient keeps invoices of a single client.
func (q InvoiceQuery) ByClient(clientID uuid.UUID) InvoiceQuery {
	return q.with(func(db *gorm.DB) *gorm.DB {
		return db.Where("invoices.client_id = ?", clientID)
	})
}

// ByCategory keeps invoices of a single category.
func (q InvoiceQuery) ByCategory(categoryID uuid.UUID) InvoiceQuery {
	return q.with(func(db *gorm.DB) *gorm.DB {
		return db.Where("invoices.category_id = ?", categoryID)
	})
}

// InPeriod keeps invoices dated within [start, end], bounds inclusive.
func (q InvoiceQuery) InPeriod(start, end time.Time) InvoiceQuery {
	return q.with(func(db *gorm.DB) *gorm.DB {
		return db.Where("invoices.date >= ? AND invoices.date <= ?", start, end)
	})
}

// CurrentMonth keeps invoices of the calendar month containing now.
func (q InvoiceQuery) CurrentMonth() InvoiceQuery {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return q.InPeriod(start, end)
}

// Year keeps invoices of the given calendar year.
func (q InvoiceQuery) Year(year int) InvoiceQuery {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return q.InPeriod(start, end)
}

// Search keeps invoices whose number, client name or client email contains
// the term, case-insensitively.
func (q InvoiceQuery) Search(term string) InvoiceQuery {
	q.joinClients = true
	pattern := "%" + term + "%"
	return q.with(func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"LOWER(invoices.number) LIKE LOWER(?) OR LOWER(clients.name) LIKE LOWER(?) OR LOWER(clients.email) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	})
}

func (q InvoiceQuery) build() *gorm.DB {
	db := q.db.Model(&model.Invoice{})
	if q.joinClients {
		db = db.Joins("JOIN clients ON clients.id = invoices.client_id")
	}
	for _, s := range q.scopes {
		db = s(db)
	}
	return db
}

// Find returns the matching invoices with client and category preloaded,
// newest first (date DESC, then id DESC for a stable order).
func (q InvoiceQuery) Find() ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := q.build().
		Preload("Client").
		Preload("Category").
		Order("invoices.date DESC, invoices.id DESC").
		Find(&invoices).Error
	return invoices, err
}

// FindPage returns one page of matching invoices (same order and preloads
// as Find) together with the total match count.
func (q InvoiceQuery) FindPage(offset, limit int) ([]model.Invoice, int64, error) {
	total, err := q.Count()
	if err != nil {
		return nil, 0, err
	}

	var invoices []model.Invoice
	err = q.build().
		Preload("Client").
		Preload("Category").
		Order("invoices.date DESC, invoices.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Count returns the number of matching invoices.
func (q InvoiceQuery) Count() (int64, error) {
	var count int64
	err := q.build().Count(&count).Error
	return count, err
}

// TotalAmount sums total_amount (tax included) over the matching set.
func (q InvoiceQuery) TotalAmount() (decimal.Decimal, error) {
	return q.sum("invoices.total_amount")
}

// NetTotal sums net_amount over the matching set.
func (q InvoiceQuery) NetTotal() (decimal.Decimal, error) {
	return q.sum("invoices.net_amount")
}

// TaxTotal sums tax_amount over the matching set.
func (q InvoiceQuery) TaxTotal() (decimal.Decimal, error) {
	return q.sum("invoices.tax_amount")
}

func (q InvoiceQuery) sum(column string) (decimal.Decimal, error) {
	var row struct {
		Value decimal.Decimal `gorm:"column:value"`
	}
	err := q.build().
		Select("COALESCE(SUM(" + column + "), 0) AS value").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Value, nil
}

// StatsByCategory groups the matching invoices by category and returns
// count, net sum and total sum per group, largest total first. Invoices
// without a category are not represented (the fallback policy keeps that
// set empty in practice). Name breaks ties so the order is deterministic.
func (q InvoiceQuery) StatsByCategory() ([]model.CategoryStat, error) {
	return q.statsByCategory(0)
}

// TopCategories returns the first n rows of StatsByCategory.
func (q InvoiceQuery) TopCategories(n int) ([]model.CategoryStat, error) {
	return q.statsByCategory(n)
}

func (q InvoiceQuery) statsByCategory(limit int) ([]model.CategoryStat, error) {
	stats := make([]model.CategoryStat, 0)
	query := q.build().
		Select("categories.id AS category_id, categories.name AS category_name, categories.color AS category_color, " +
			"COUNT(invoices.id) AS invoice_count, " +
			"COALESCE(SUM(invoices.net_amount), 0) AS net_sum, " +
			"COALESCE(SUM(invoices.total_amount), 0) AS total_sum").
		Joins("JOIN categories ON categories.id = invoices.category_id").
		Group("categories.id, categories.name, categories.color").
		Order("total_sum DESC, categories.name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// StatsByClient groups the matching invoices by client and returns count,
// net sum and total sum per group, largest total first.
func (q InvoiceQuery) StatsByClient() ([]model.ClientStat, error) {
	return q.statsByClient(0)
}

// TopClients returns the first n rows of StatsByClient.
func (q InvoiceQuery) TopClients(n int) ([]model.ClientStat, error) {
	return q.statsByClient(n)
}

func (q InvoiceQuery) statsByClient(limit int) ([]model.ClientStat, error) {
	q.joinClients = true
	stats := make([]model.ClientStat, 0)
	query := q.build().
		Select("clients.id AS client_id, clients.name AS client_name, " +
			"COUNT(invoices.id) AS invoice_count, " +
			"COALESCE(SUM(invoices.net_amount), 0) AS net_sum, " +
			"COALESCE(SUM(invoices.total_amount), 0) AS total_sum").
		Group("clients.id, clients.name").
		Order("total_sum DESC, clients.name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
