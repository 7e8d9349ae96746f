package recommendation

import "strings"

// FindConflicts joins the two feeds by product id and returns one Conflict
// per ML record whose rule counterpart carries a different category.
// ML records without a counterpart are skipped. Conflicts follow the order
// of the ML list.
func FindConflicts(rules []RuleRecommendation, ml []MLRecommendation) []Conflict {
	conflicts, _ := reconcile(rules, ml)
	return conflicts
}

// reconcile also reports how many ML records found a rule counterpart.
// Product id 0 means the id was missing upstream and never joins. When a
// product id repeats in the rule feed the last record wins.
func reconcile(rules []RuleRecommendation, ml []MLRecommendation) ([]Conflict, int) {
	byProduct := make(map[int64]RuleRecommendation, len(rules))
	for _, r := range rules {
		if r.ProductID == 0 {
			continue
		}
		byProduct[r.ProductID] = r
	}

	conflicts := make([]Conflict, 0)
	matched := 0
	for _, m := range ml {
		if m.ProductID == 0 {
			continue
		}
		r, ok := byProduct[m.ProductID]
		if !ok {
			continue
		}
		matched++
		if strings.EqualFold(string(r.Category), string(m.Category)) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ProductID:    m.ProductID,
			ProductName:  displayName(m.ProductName, r.ProductName),
			RuleCategory: r.Category,
			MLCategory:   m.Category,
		})
	}
	return conflicts, matched
}

// displayName prefers the ML name unless it is the placeholder.
func displayName(mlName, ruleName string) string {
	if mlName != "" && mlName != UnknownProductName {
		return mlName
	}
	if ruleName != "" {
		return ruleName
	}
	return UnknownProductName
}
