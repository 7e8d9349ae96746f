package recommendation

import "strings"

// Category is a stock action label shared by the rule-based and ML feeds.
type Category string

const (
	CategoryBuy               Category = "BUY"
	CategoryHold              Category = "HOLD"
	CategoryAvoid             Category = "AVOID"
	CategoryPromote           Category = "PROMOTE"
	CategoryTransferOrPromote Category = "TRANSFER_OR_PROMOTE"
)

// NeutralCategory replaces missing or unknown upstream codes.
const NeutralCategory = CategoryHold

// UnknownProductName is shown when an upstream item has no product name.
const UnknownProductName = "Unknown product"

// Categories is the closed category set in legend order.
var Categories = []Category{
	CategoryBuy,
	CategoryHold,
	CategoryAvoid,
	CategoryPromote,
	CategoryTransferOrPromote,
}

// older rule engine builds emit these codes
var categoryAliases = map[string]Category{
	"TRANSFER": CategoryTransferOrPromote,
	"WATCH":    CategoryHold,
}

// Known reports whether c belongs to the closed category set.
func (c Category) Known() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory maps an upstream code to a Category. The boolean is false
// when the code was not recognized and NeutralCategory was returned.
func ParseCategory(code string) (Category, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if c := Category(code); c.Known() {
		return c, true
	}
	if c, ok := categoryAliases[code]; ok {
		return c, true
	}
	return NeutralCategory, false
}

// RuleRecommendation is one item of the rule engine feed.
type RuleRecommendation struct {
	ProductID            int64    `json:"productId"`
	ProductName          string   `json:"productName"`
	Category             Category `json:"recommendation"`
	RawCategory          string   `json:"rawRecommendation,omitempty"`
	BranchID             *int64   `json:"branchId,omitempty"`
	SoldQuantity         int64    `json:"soldQuantity"`
	CurrentStock         int64    `json:"currentStock"`
	AvgDailySales        *float64 `json:"avgDailySales,omitempty"`
	DaysToEmpty          *float64 `json:"daysToEmpty,omitempty"`
	ExpiringSoonQuantity int64    `json:"expiringSoonQuantity"`
	Explanation          string   `json:"explanation"`
}

// MLRecommendation is one item of the forecasting model feed.
type MLRecommendation struct {
	ProductID            int64    `json:"productId"`
	ProductName          string   `json:"productName"`
	Category             Category `json:"recommendation"`
	RawCategory          string   `json:"rawRecommendation,omitempty"`
	RiskScore            float64  `json:"riskScore"`
	BranchID             *int64   `json:"branchId,omitempty"`
	CurrentStock         int64    `json:"currentStock"`
	BaselineDailySales   float64  `json:"baselineDailySales"`
	FinalPredictedDaily  *float64 `json:"finalPredictedDaily,omitempty"`
	FinalPredictedDemand *float64 `json:"finalPredictedDemand,omitempty"`
	ExpiringSoonQuantity int64    `json:"expiringSoonQuantity"`
	VelocityClass        string   `json:"velocityClass,omitempty"`
	Explanation          string   `json:"explanation"`
}

// Conflict is a product for which the two feeds suggest different actions.
type Conflict struct {
	ProductID    int64    `json:"productId"`
	ProductName  string   `json:"productName"`
	RuleCategory Category `json:"ruleRecommendation"`
	MLCategory   Category `json:"mlRecommendation"`
}

// CategoryCounts maps a category to the number of records carrying it.
type CategoryCounts map[Category]int
