package database

import (
	"time"

	"dinepos/internal/models"
)

// SalesReportResult holds the aggregates the reports screen and the AI need
type SalesReportResult struct {
	TotalRevenue int64
	TotalCount   int64
}

// GetSalesReport sums closed-order revenue for one tenant in a date range
func GetSalesReport(tenantID uint, start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no orders exist
	err := DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ? AND closed_at BETWEEN ? AND ?",
			tenantID, models.StatusClosed, start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ? AND closed_at BETWEEN ? AND ?",
			tenantID, models.StatusClosed, start, end).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
