package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
)

// Snapshot is the stored summary of one comparison run.
type Snapshot struct {
	ID         uuid.UUID                     `json:"id"`
	CreatedAt  time.Time                     `json:"createdAt"`
	From       string                        `json:"from"`
	To         string                        `json:"to"`
	BranchID   *int64                        `json:"branchId"`
	RuleCounts recommendation.CategoryCounts `json:"ruleCounts"`
	MLCounts   recommendation.CategoryCounts `json:"mlCounts"`
	Matched    int                           `json:"matched"`
	Conflicts  int                           `json:"conflicts"`
	// ConflictProductIDs lists the disputed products in conflict order.
	ConflictProductIDs []int64 `json:"conflictProductIds"`
}

// New builds a snapshot of c with a fresh ID.
func New(from, to string, branchID *int64, c recommendation.Comparison, now time.Time) Snapshot {
	ids := make([]int64, 0, len(c.Conflicts))
	for _, conflict := range c.Conflicts {
		ids = append(ids, conflict.ProductID)
	}
	return Snapshot{
		ID:         uuid.New(),
		CreatedAt:  now.UTC(),
		From:       from,
		To:         to,
		BranchID:   branchID,
		RuleCounts: c.RuleCounts,
		MLCounts:   c.MLCounts,
		Matched:    c.Matched,
		Conflicts:  len(c.Conflicts),

		ConflictProductIDs: ids,
	}
}
