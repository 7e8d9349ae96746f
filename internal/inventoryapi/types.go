package inventoryapi

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// DateLayout is the date format of every from/to parameter of the backend.
const DateLayout = "2006-01-02"

// Window selects a reporting period and, optionally, a single branch.
type Window struct {
	From     time.Time
	To       time.Time
	BranchID *int64
}

func (w Window) values() url.Values {
	v := url.Values{}
	v.Set("from", w.From.Format(DateLayout))
	v.Set("to", w.To.Format(DateLayout))
	setBranch(v, w.BranchID)
	return v
}

func setBranch(v url.Values, branchID *int64) {
	if branchID != nil {
		v.Set("branchId", strconv.FormatInt(*branchID, 10))
	}
}

// RuleQuery parameterizes the rule engine feed.
type RuleQuery struct {
	Window
	TTEWindowDays    int
	ExpiryWindowDays int
}

// MLQuery parameterizes the ML feed.
type MLQuery struct {
	Window
	HorizonDays int
}

// MLEnvelope is the ML feed response: model quality metrics plus items.
type MLEnvelope struct {
	From        string
	To          string
	BranchID    *int64
	HorizonDays int
	RMSE        *float64
	MAPE        *float64
	SampleCount int
	Items       []gjson.Result
}

// IncomeStatement is revenue and cost of goods sold over a window.
// GrossProfit is nil when the backend omitted it.
type IncomeStatement struct {
	From        string           `json:"from"`
	To          string           `json:"to"`
	BranchID    *int64           `json:"branchId"`
	Revenue     decimal.Decimal  `json:"revenue"`
	COGS        decimal.Decimal  `json:"cogs"`
	GrossProfit *decimal.Decimal `json:"grossProfit"`
}

type BestSeller struct {
	ProductID     int64            `json:"productId"`
	ProductName   string           `json:"productName"`
	TotalQuantity int64            `json:"totalQuantity"`
	TotalValue    *decimal.Decimal `json:"totalValue,omitempty"`
}

type SlowMover struct {
	ProductID         int64  `json:"productId"`
	ProductName       string `json:"productName"`
	SKU               string `json:"sku,omitempty"`
	TotalQuantity     int64  `json:"totalQuantity"`
	DaysSinceLastSale *int64 `json:"daysSinceLastSale,omitempty"`
}

// ExpiringBatch is a stock batch whose expiry date falls inside the alert window.
type ExpiringBatch struct {
	BatchID     int64           `json:"batchId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	BranchID    int64           `json:"branchId"`
	BranchName  string          `json:"branchName"`
	ExpiryDate  string          `json:"expiryDate"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}
