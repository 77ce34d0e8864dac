package service

import (
	"context"
	"fmt"
	"strconv"

	"backend/internal/model"

	"gorm.io/gorm"
)

// --- DTOs ---

type RevenueDataPoint struct {
	Period          string `json:"period"`
	InvoicedExclTax string `json:"invoiced_excl_tax"`
	InvoicedInclTax string `json:"invoiced_incl_tax"`
	CollectedAmount string `json:"collected_amount"`
	OutstandingDue  string `json:"outstanding_due"`
	TaxCollected    string `json:"tax_collected"`
}

type DashboardSummary struct {
	DraftQuotes       int64              `json:"draft_quotes"`
	PendingQuotes     int64              `json:"pending_quotes"`
	AcceptedQuotes    int64              `json:"accepted_quotes"`
	UnpaidInvoices    int64              `json:"unpaid_invoices"`
	OutstandingAmount string             `json:"outstanding_amount"`
	Revenue           []RevenueDataPoint `json:"revenue"`
}

type RevenueFilter struct {
	GroupBy   string // month, quarter, year
	StartDate string // RFC3339
	EndDate   string // RFC3339
}

// --- Interface ---

type DashboardService interface {
	GetSummary(ctx context.Context, companyID string, filter RevenueFilter) (DashboardSummary, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

// --- Implementation ---

func (s *dashboardService) GetSummary(ctx context.Context, companyID string, filter RevenueFilter) (DashboardSummary, error) {
	groupBy := filter.GroupBy
	switch groupBy {
	case "month", "quarter", "year":
		// valid
	default:
		groupBy = "month"
	}

	summary := DashboardSummary{}

	counts := []struct {
		kind   string
		status string
		dest   *int64
	}{
		{model.KindQuote, model.QuoteDraft, &summary.DraftQuotes},
		{model.KindQuote, model.QuoteSent, &summary.PendingQuotes},
		{model.KindQuote, model.QuoteAccepted, &summary.AcceptedQuotes},
	}
	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(&model.Document{}).
			Where("company_id = ? AND kind = ? AND status = ?", companyID, c.kind, c.status).
			Count(c.dest).Error
		if err != nil {
			return DashboardSummary{}, fmt.Errorf("failed to count quotes: %w", err)
		}
	}

	err := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("company_id = ? AND kind = ? AND status IN ?", companyID, model.KindInvoice,
			[]string{model.InvoiceSent, model.InvoicePartial, model.InvoiceOverdue}).
		Count(&summary.UnpaidInvoices).Error
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to count invoices: %w", err)
	}

	var outstanding float64
	err = s.db.WithContext(ctx).Model(&model.Document{}).
		Where("company_id = ? AND kind = ? AND status IN ?", companyID, model.KindInvoice,
			[]string{model.InvoiceSent, model.InvoicePartial, model.InvoiceOverdue}).
		Select("COALESCE(SUM(amount_due), 0)").
		Scan(&outstanding).Error
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to sum outstanding amounts: %w", err)
	}
	summary.OutstandingAmount = strconv.FormatFloat(outstanding, 'f', 2, 64)

	// Grouped revenue over issued invoices. DATE_TRUNC keeps the grouping in
	// the database (Postgres only, like the rest of the reporting queries).
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC(?, d.date), 'YYYY-MM-DD') AS period,
			COALESCE(SUM(d.total_excl_tax), 0) AS invoiced_excl_tax,
			COALESCE(SUM(d.total_incl_tax), 0) AS invoiced_incl_tax,
			COALESCE(SUM(d.amount_paid), 0)    AS collected_amount,
			COALESCE(SUM(d.amount_due), 0)     AS outstanding_due,
			COALESCE(SUM(d.total_tax), 0)      AS tax_collected
		FROM documents d
		WHERE d.company_id = ?
		  AND d.kind = ?
		  AND d.status NOT IN (?, ?)
		  AND d.deleted_at IS NULL
		  AND d.date >= ?::timestamptz
		  AND d.date <= ?::timestamptz
		GROUP BY DATE_TRUNC(?, d.date)
		ORDER BY period
	`

	type rawResult struct {
		Period          string  `gorm:"column:period"`
		InvoicedExclTax float64 `gorm:"column:invoiced_excl_tax"`
		InvoicedInclTax float64 `gorm:"column:invoiced_incl_tax"`
		CollectedAmount float64 `gorm:"column:collected_amount"`
		OutstandingDue  float64 `gorm:"column:outstanding_due"`
		TaxCollected    float64 `gorm:"column:tax_collected"`
	}

	var rows []rawResult
	err = s.db.WithContext(ctx).Raw(query,
		groupBy,
		companyID,
		model.KindInvoice,
		model.InvoiceDraft,
		model.InvoiceCancelled,
		filter.StartDate,
		filter.EndDate,
		groupBy,
	).Scan(&rows).Error
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("failed to fetch revenue statistics: %w", err)
	}

	summary.Revenue = make([]RevenueDataPoint, 0, len(rows))
	for _, r := range rows {
		summary.Revenue = append(summary.Revenue, RevenueDataPoint{
			Period:          r.Period,
			InvoicedExclTax: strconv.FormatFloat(r.InvoicedExclTax, 'f', 2, 64),
			InvoicedInclTax: strconv.FormatFloat(r.InvoicedInclTax, 'f', 2, 64),
			CollectedAmount: strconv.FormatFloat(r.CollectedAmount, 'f', 2, 64),
			OutstandingDue:  strconv.FormatFloat(r.OutstandingDue, 'f', 2, 64),
			TaxCollected:    strconv.FormatFloat(r.TaxCollected, 'f', 2, 64),
		})
	}

	return summary, nil
}
