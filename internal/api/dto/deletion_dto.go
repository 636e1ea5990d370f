package dto

import (
	"time"

	"github.com/spec-kit/repair-shop/internal/domain"
)

// DeletionStepPreview is one planned step.
type DeletionStepPreview struct {
	Name   string                `json:"name"`
	Table  domain.Table          `json:"table"`
	Count  int64                 `json:"count"`
	Sample []domain.RecordSample `json:"sample"`
}

// DeletionPreviewResponse is shown before an operator confirms a customer delete.
type DeletionPreviewResponse struct {
	CustomerID   string                 `json:"customer_id"`
	CustomerName string                 `json:"customer_name"`
	Summary      domain.DeletionSummary `json:"summary"`
	Steps        []DeletionStepPreview  `json:"steps"`
}

// NewDeletionPreviewResponse maps a plan.
func NewDeletionPreviewResponse(plan domain.DeletionPlan) DeletionPreviewResponse {
	resp := DeletionPreviewResponse{
		CustomerID: plan.CustomerID,
		Summary:    plan.Summary,
		Steps:      make([]DeletionStepPreview, 0, len(plan.Steps)),
	}
	if plan.Customer != nil {
		resp.CustomerName = plan.Customer.Name
	}
	for _, step := range plan.Steps {
		resp.Steps = append(resp.Steps, DeletionStepPreview{
			Name:   step.Name,
			Table:  step.Table,
			Count:  step.Count,
			Sample: step.Sample,
		})
	}
	return resp
}

// DeletionReportResponse wraps a report with its total.
type DeletionReportResponse struct {
	domain.DeletionReport
	TotalDeleted int64   `json:"total_deleted"`
	DurationMS   float64 `json:"duration_ms"`
}

// NewDeletionReportResponse maps a report.
func NewDeletionReportResponse(report domain.DeletionReport) DeletionReportResponse {
	var duration time.Duration
	if !report.FinishedAt.IsZero() {
		duration = report.FinishedAt.Sub(report.StartedAt)
	}
	return DeletionReportResponse{
		DeletionReport: report,
		TotalDeleted:   report.TotalDeleted(),
		DurationMS:     float64(duration.Microseconds()) / 1000,
	}
}
