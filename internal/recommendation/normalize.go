package recommendation

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Items returns the item list of a feed payload. The backend answers with a
// bare array, an {"items": [...]} envelope or a paged {"content": [...]}
// body depending on the endpoint; any other shape yields no items.
func Items(payload gjson.Result) []gjson.Result {
	switch {
	case payload.IsArray():
		return payload.Array()
	case payload.IsObject():
		for _, key := range []string{"items", "content"} {
			if v := payload.Get(key); v.IsArray() {
				return v.Array()
			}
		}
	}
	return []gjson.Result{}
}

// ParseItems is Items over raw bytes. Invalid JSON yields no items.
func ParseItems(data []byte) []gjson.Result {
	if !gjson.ValidBytes(data) {
		return []gjson.Result{}
	}
	return Items(gjson.ParseBytes(data))
}

// NormalizeRule maps one rule engine item to a RuleRecommendation.
// Missing or malformed fields take their defaults; it never fails.
func NormalizeRule(item gjson.Result) RuleRecommendation {
	raw := stringField(item, "recommendation")
	category, _ := ParseCategory(raw)
	return RuleRecommendation{
		ProductID:            productID(item),
		ProductName:          productName(item),
		Category:             category,
		RawCategory:          raw,
		BranchID:             optionalInt(item, "branchId"),
		SoldQuantity:         intField(item, "soldQuantity"),
		CurrentStock:         intField(item, "currentStock"),
		AvgDailySales:        optionalFloat(item, "avgDailySales"),
		DaysToEmpty:          optionalFloat(item, "daysToEmpty"),
		ExpiringSoonQuantity: intField(item, "expiringSoonQuantity"),
		Explanation:          stringField(item, "explanation"),
	}
}

// NormalizeML maps one ML service item to an MLRecommendation.
// The risk score is clamped to [0,1].
func NormalizeML(item gjson.Result) MLRecommendation {
	raw := stringField(item, "recommendation")
	category, _ := ParseCategory(raw)
	risk, _ := number(item.Get("riskScore"))
	baseline, _ := number(item.Get("baselineDailySales"))
	return MLRecommendation{
		ProductID:            productID(item),
		ProductName:          productName(item),
		Category:             category,
		RawCategory:          raw,
		RiskScore:            math.Min(math.Max(risk, 0), 1),
		BranchID:             optionalInt(item, "branchId"),
		CurrentStock:         intField(item, "currentStock"),
		BaselineDailySales:   baseline,
		FinalPredictedDaily:  optionalFloat(item, "finalPredictedDaily"),
		FinalPredictedDemand: optionalFloat(item, "finalPredictedDemand"),
		ExpiringSoonQuantity: intField(item, "expiringSoonQuantity"),
		VelocityClass:        stringField(item, "velocityClass"),
		Explanation:          stringField(item, "explanation"),
	}
}

// NormalizeRules normalizes every item of a rule feed, keeping order.
func NormalizeRules(items []gjson.Result) []RuleRecommendation {
	out := make([]RuleRecommendation, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeRule(it))
	}
	return out
}

// NormalizeMLs normalizes every item of an ML feed, keeping order.
func NormalizeMLs(items []gjson.Result) []MLRecommendation {
	out := make([]MLRecommendation, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeML(it))
	}
	return out
}

// productID returns 0 for missing, non-numeric or non-positive ids.
func productID(item gjson.Result) int64 {
	id := intField(item, "productId")
	if id < 0 {
		return 0
	}
	return id
}

func productName(item gjson.Result) string {
	if name := stringField(item, "productName"); name != "" {
		return name
	}
	return UnknownProductName
}

func stringField(item gjson.Result, key string) string {
	v := item.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}

func intField(item gjson.Result, key string) int64 {
	i, _ := integer(item.Get(key))
	return i
}

func optionalInt(item gjson.Result, key string) *int64 {
	i, ok := integer(item.Get(key))
	if !ok {
		return nil
	}
	return &i
}

func optionalFloat(item gjson.Result, key string) *float64 {
	f, ok := number(item.Get(key))
	if !ok {
		return nil
	}
	return &f
}

// integer reads ids and quantities without a float64 round trip, so ids
// above 2^53 stay distinct. Fractional values are truncated.
func integer(v gjson.Result) (int64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Int(), true
	case gjson.String:
		if i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64); err == nil {
			return i, true
		}
	}
	f, ok := number(v)
	if !ok || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// number accepts JSON numbers and numeric strings.
func number(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
