package recommendation

// CountCategories counts occurrences per category. Every category of the
// closed set is present in the result, with 0 when absent from the input.
// Labels outside the closed set are counted under their own key.
func CountCategories(categories []Category) CategoryCounts {
	counts := make(CategoryCounts, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, c := range categories {
		counts[c]++
	}
	return counts
}

// CountRuleCategories counts the categories of a rule feed.
func CountRuleCategories(recs []RuleRecommendation) CategoryCounts {
	return countBy(recs, func(r RuleRecommendation) Category { return r.Category })
}

// CountMLCategories counts the categories of an ML feed.
func CountMLCategories(recs []MLRecommendation) CategoryCounts {
	return countBy(recs, func(r MLRecommendation) Category { return r.Category })
}

func countBy[T any](recs []T, category func(T) Category) CategoryCounts {
	categories := make([]Category, len(recs))
	for i, r := range recs {
		categories[i] = category(r)
	}
	return CountCategories(categories)
}
