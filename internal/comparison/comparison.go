package comparison

import (
	"github.com/google/uuid"

	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
)

// ModelMetrics describes the quality of the forecast behind the ML feed.
type ModelMetrics struct {
	HorizonDays int      `json:"horizonDays"`
	RMSE        *float64 `json:"rmse"`
	MAPE        *float64 `json:"mape"`
	SampleCount int      `json:"sampleCount"`
}

// RuleFeed is the normalized rule engine feed for one window.
type RuleFeed struct {
	From     string                              `json:"from"`
	To       string                              `json:"to"`
	BranchID *int64                              `json:"branchId"`
	Counts   recommendation.CategoryCounts       `json:"counts"`
	Items    []recommendation.RuleRecommendation `json:"items"`
}

// MLFeed is the normalized ML feed for one window.
type MLFeed struct {
	From     string                            `json:"from"`
	To       string                            `json:"to"`
	BranchID *int64                            `json:"branchId"`
	Model    ModelMetrics                      `json:"model"`
	Counts   recommendation.CategoryCounts     `json:"counts"`
	Items    []recommendation.MLRecommendation `json:"items"`
}

// Result is the comparison of both feeds for one window.
type Result struct {
	From       string       `json:"from"`
	To         string       `json:"to"`
	BranchID   *int64       `json:"branchId"`
	Model      ModelMetrics `json:"model"`
	SnapshotID *uuid.UUID   `json:"snapshotId,omitempty"`
	recommendation.Comparison
}
