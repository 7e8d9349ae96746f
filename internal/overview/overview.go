package overview

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
)

const (
	ExpiryAlertDays    = 30
	BestsellerLimit    = 10
	SlowMoverThreshold = 5
)

// Overview is the KPI header of the dashboard for one window.
type Overview struct {
	From     string `json:"from"`
	To       string `json:"to"`
	BranchID *int64 `json:"branchId"`

	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
	// GrossMarginPct is nil when there was no revenue.
	GrossMarginPct *decimal.Decimal `json:"grossMarginPct"`
	InventoryValue decimal.Decimal  `json:"inventoryValue"`

	ExpiringSoonCount    int `json:"expiringSoonCount"`
	ExpiringSoonQuantity int `json:"expiringSoonQuantity"`

	Bestsellers []inventoryapi.BestSeller `json:"bestsellers"`
	SlowMovers  []inventoryapi.SlowMover  `json:"slowMovers"`
}

var hundred = decimal.NewFromInt(100)

// grossFigures prefers the backend's gross profit and derives it otherwise.
func grossFigures(inc inventoryapi.IncomeStatement) (decimal.Decimal, *decimal.Decimal) {
	gross := inc.Revenue.Sub(inc.COGS)
	if inc.GrossProfit != nil {
		gross = *inc.GrossProfit
	}
	if inc.Revenue.IsZero() {
		return gross, nil
	}
	margin := gross.Div(inc.Revenue).Mul(hundred).Round(2)
	return gross, &margin
}
