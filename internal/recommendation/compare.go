package recommendation

// Comparison is the side-by-side view of both feeds.
type Comparison struct {
	RuleCounts CategoryCounts `json:"ruleCounts"`
	MLCounts   CategoryCounts `json:"mlCounts"`
	Conflicts  []Conflict     `json:"conflicts"`
	// Matched is the number of ML records that found a rule counterpart.
	Matched    int `json:"matched"`
	Agreements int `json:"agreements"`
}

// Compare counts both feeds and detects their conflicts.
func Compare(rules []RuleRecommendation, ml []MLRecommendation) Comparison {
	conflicts, matched := reconcile(rules, ml)
	return Comparison{
		RuleCounts: CountRuleCategories(rules),
		MLCounts:   CountMLCategories(ml),
		Conflicts:  conflicts,
		Matched:    matched,
		Agreements: matched - len(conflicts),
	}
}
