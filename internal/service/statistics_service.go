package service

import (
	"context"
	"fmt"
	"time"

	"facturation/internal/model"
	"facturation/internal/repository"
)

// DefaultTopLimit bounds the top-clients / top-categories rankings.
const DefaultTopLimit = 5

type StatisticsFilter struct {
	StartDate string // YYYY-MM-DD, inclusive
	EndDate   string // YYYY-MM-DD, inclusive
	Period    string // "current_month" shortcut, overrides dates
	Year      int    // calendar-year shortcut, overrides dates
	TopLimit  int
}

type StatisticsService interface {
	GetStatistics(ctx context.Context, filter StatisticsFilter) (model.StatisticsResponse, error)
}

type statisticsService struct {
	invoiceRepo repository.InvoiceRepository
}

func NewStatisticsService(invoiceRepo repository.InvoiceRepository) StatisticsService {
	return &statisticsService{invoiceRepo: invoiceRepo}
}

// GetStatistics aggregates invoice sums, payment counts, group-by breakdowns
// and top-N rankings over the requested period. An empty matching set yields
// zero sums and empty lists.
func (s *statisticsService) GetStatistics(ctx context.Context, filter StatisticsFilter) (model.StatisticsResponse, error) {
	var response model.StatisticsResponse

	query := s.invoiceRepo.Query(ctx)

	now := time.Now()
	switch {
	case filter.Period == "current_month":
		query = query.CurrentMonth()
		response.TimeRangeStartDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		response.TimeRangeEndDate = response.TimeRangeStartDate.AddDate(0, 1, -1)
	case filter.Year != 0:
		query = query.Year(filter.Year)
		response.TimeRangeStartDate = time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		response.TimeRangeEndDate = time.Date(filter.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	case filter.StartDate != "" || filter.EndDate != "":
		start, end, err := parsePeriod(filter.StartDate, filter.EndDate)
		if err != nil {
			return response, err
		}
		query = query.InPeriod(start, end)
		response.TimeRangeStartDate = start
		response.TimeRangeEndDate = end
	}

	topLimit := filter.TopLimit
	if topLimit <= 0 {
		topLimit = DefaultTopLimit
	}

	var err error
	if response.InvoiceCount, err = query.Count(); err != nil {
		return response, fmt.Errorf("failed to count invoices: %w", err)
	}
	if response.PaidCount, err = query.Paid().Count(); err != nil {
		return response, fmt.Errorf("failed to count paid invoices: %w", err)
	}
	if response.UnpaidCount, err = query.Unpaid().Count(); err != nil {
		return response, fmt.Errorf("failed to count unpaid invoices: %w", err)
	}
	if response.NetTotal, err = query.NetTotal(); err != nil {
		return response, fmt.Errorf("failed to sum net amounts: %w", err)
	}
	if response.TaxTotal, err = query.TaxTotal(); err != nil {
		return response, fmt.Errorf("failed to sum tax amounts: %w", err)
	}
	if response.TotalAmount, err = query.TotalAmount(); err != nil {
		return response, fmt.Errorf("failed to sum total amounts: %w", err)
	}
	if response.UnpaidTotal, err = query.Unpaid().TotalAmount(); err != nil {
		return response, fmt.Errorf("failed to sum unpaid totals: %w", err)
	}
	if response.ByCategory, err = query.StatsByCategory(); err != nil {
		return response, fmt.Errorf("failed to group by category: %w", err)
	}
	if response.ByClient, err = query.StatsByClient(); err != nil {
		return response, fmt.Errorf("failed to group by client: %w", err)
	}
	if response.TopClients, err = query.TopClients(topLimit); err != nil {
		return response, fmt.Errorf("failed to rank clients: %w", err)
	}
	if response.TopCategories, err = query.TopCategories(topLimit); err != nil {
		return response, fmt.Errorf("failed to rank categories: %w", err)
	}

	return response, nil
}
