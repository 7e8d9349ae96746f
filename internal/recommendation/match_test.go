package recommendation

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(id int64, name string, c Category) RuleRecommendation {
	return RuleRecommendation{ProductID: id, ProductName: name, Category: c}
}

func ml(id int64, name string, c Category, risk float64) MLRecommendation {
	return MLRecommendation{ProductID: id, ProductName: name, Category: c, RiskScore: risk}
}

func TestCompare_EmptyInputs(t *testing.T) {
	cmp := Compare(nil, nil)

	require.Len(t, cmp.RuleCounts, len(Categories))
	require.Len(t, cmp.MLCounts, len(Categories))
	for _, c := range Categories {
		assert.Equal(t, 0, cmp.RuleCounts[c], "rule %s", c)
		assert.Equal(t, 0, cmp.MLCounts[c], "ml %s", c)
	}
	require.NotNil(t, cmp.Conflicts)
	assert.Empty(t, cmp.Conflicts)
	assert.Zero(t, cmp.Matched)
	assert.Zero(t, cmp.Agreements)
}

func TestFindConflicts_CaseInsensitiveAgreement(t *testing.T) {
	rules := NormalizeRules(ParseItems([]byte(`[{"productId":1,"productName":"Milk","recommendation":"BUY"}]`)))
	mls := NormalizeMLs(ParseItems([]byte(`[{"productId":1,"productName":"Milk","recommendation":"buy","riskScore":0.2}]`)))

	assert.Empty(t, FindConflicts(rules, mls))

	cmp := Compare(rules, mls)
	assert.Equal(t, 1, cmp.Matched)
	assert.Equal(t, 1, cmp.Agreements)
}

func TestFindConflicts_Disagreement(t *testing.T) {
	rules := NormalizeRules(ParseItems([]byte(`[{"productId":2,"productName":"Bread","recommendation":"HOLD"}]`)))
	mls := NormalizeMLs(ParseItems([]byte(`[{"productId":2,"productName":"Bread","recommendation":"AVOID","riskScore":0.9}]`)))

	conflicts := FindConflicts(rules, mls)
	assert.Equal(t, []Conflict{{
		ProductID:    2,
		ProductName:  "Bread",
		RuleCategory: CategoryHold,
		MLCategory:   CategoryAvoid,
	}}, conflicts)
}

func TestCompare_DisjointProducts(t *testing.T) {
	rules := []RuleRecommendation{rule(3, "Cheese", CategoryHold)}
	mls := []MLRecommendation{ml(4, "Eggs", CategoryBuy, 0.3)}

	cmp := Compare(rules, mls)
	assert.Empty(t, cmp.Conflicts)
	assert.Zero(t, cmp.Matched)
	assert.Equal(t, 1, cmp.RuleCounts[CategoryHold])
	assert.Equal(t, 0, cmp.RuleCounts[CategoryBuy])
	assert.Equal(t, 1, cmp.MLCounts[CategoryBuy])
	assert.Equal(t, 0, cmp.MLCounts[CategoryHold])
}

func TestFindConflicts_OrderFollowsMLList(t *testing.T) {
	rules := []RuleRecommendation{
		rule(1, "A", CategoryBuy),
		rule(2, "B", CategoryBuy),
		rule(3, "C", CategoryBuy),
	}
	mls := []MLRecommendation{
		ml(3, "C", CategoryAvoid, 0.8),
		ml(9, "Z", CategoryAvoid, 0.8),
		ml(1, "A", CategoryHold, 0.5),
		ml(2, "B", CategoryBuy, 0.1),
	}

	conflicts := FindConflicts(rules, mls)
	require.Len(t, conflicts, 2)
	assert.Equal(t, int64(3), conflicts[0].ProductID)
	assert.Equal(t, int64(1), conflicts[1].ProductID)
	// unmatched ML records never produce conflicts
	assert.LessOrEqual(t, len(conflicts), Compare(rules, mls).Matched)
}

func TestFindConflicts_NamePreference(t *testing.T) {
	rules := []RuleRecommendation{
		rule(1, "Rule name", CategoryBuy),
		rule(2, "Rule only", CategoryBuy),
	}
	mls := []MLRecommendation{
		ml(1, "ML name", CategoryAvoid, 0),
		ml(2, UnknownProductName, CategoryAvoid, 0),
	}

	conflicts := FindConflicts(rules, mls)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "ML name", conflicts[0].ProductName)
	assert.Equal(t, "Rule only", conflicts[1].ProductName)
}

func TestFindConflicts_DuplicateRuleIDsLastWins(t *testing.T) {
	rules := []RuleRecommendation{
		rule(5, "Soap", CategoryAvoid),
		rule(5, "Soap", CategoryBuy),
	}
	mls := []MLRecommendation{ml(5, "Soap", CategoryBuy, 0.1)}

	assert.Empty(t, FindConflicts(rules, mls))
}

func TestFindConflicts_MissingIDsNeverJoin(t *testing.T) {
	rules := []RuleRecommendation{rule(0, UnknownProductName, CategoryBuy)}
	mls := []MLRecommendation{ml(0, UnknownProductName, CategoryAvoid, 0.4)}

	cmp := Compare(rules, mls)
	assert.Empty(t, cmp.Conflicts)
	assert.Zero(t, cmp.Matched)
	// still counted in the legend
	assert.Equal(t, 1, cmp.RuleCounts[CategoryBuy])
	assert.Equal(t, 1, cmp.MLCounts[CategoryAvoid])
}

func TestCountCategories_UnknownLabelCounted(t *testing.T) {
	counts := CountCategories([]Category{CategoryBuy, "LIQUIDATE", CategoryBuy})
	assert.Equal(t, 2, counts[CategoryBuy])
	assert.Equal(t, 1, counts["LIQUIDATE"])
	assert.Equal(t, 0, counts[CategoryPromote])
}

func TestCountCategories_OrderIndependent(t *testing.T) {
	categories := []Category{
		CategoryBuy, CategoryBuy, CategoryHold, CategoryAvoid, CategoryPromote,
		CategoryTransferOrPromote, CategoryHold, CategoryBuy, CategoryAvoid,
	}
	want := CountCategories(categories)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Category(nil), categories...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, CountCategories(shuffled))
	}
}

func TestWriteConflictsCSV_Golden(t *testing.T) {
	conflicts := []Conflict{
		{ProductID: 2, ProductName: "Bread", RuleCategory: CategoryHold, MLCategory: CategoryAvoid},
		{ProductID: 11, ProductName: "Cheese, aged", RuleCategory: CategoryBuy, MLCategory: CategoryPromote},
		{ProductID: 14, ProductName: `Chips "XL"`, RuleCategory: CategoryTransferOrPromote, MLCategory: CategoryHold},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteConflictsCSV(&buf, conflicts))

	g := goldie.New(t)
	g.Assert(t, "conflicts", buf.Bytes())
}

func TestWriteConflictsCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConflictsCSV(&buf, nil))
	assert.Equal(t, "productId,productName,ruleRecommendation,mlRecommendation\n", buf.String())
}

func TestFindConflicts_AdjacentLargeIDsDoNotJoin(t *testing.T) {
	rules := NormalizeRules(ParseItems([]byte(`[{"productId":9007199254740993,"productName":"A","recommendation":"BUY"}]`)))
	mls := NormalizeMLs(ParseItems([]byte(`[{"productId":9007199254740992,"productName":"B","recommendation":"AVOID"}]`)))

	require.Len(t, rules, 1)
	require.Len(t, mls, 1)
	assert.NotEqual(t, rules[0].ProductID, mls[0].ProductID)

	cmp := Compare(rules, mls)
	assert.Empty(t, cmp.Conflicts)
	assert.Zero(t, cmp.Matched)
}
