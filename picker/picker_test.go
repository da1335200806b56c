package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okQuery(query string, items ...map[string]any) QueryResult {
	return QueryResult{Query: query, Success: true, RawData: rawWithOrganic(items...)}
}

func totalPicked(picks []PickedProduct) float64 {
	sum := 0.0
	for _, p := range picks {
		if p.ExtractedPrice != nil {
			sum += *p.ExtractedPrice
		}
	}
	return sum
}

// 三个查询、$900预算：每个查询出一件，总价不超预算，类目互不相同
func TestPickThreeWithinBudget(t *testing.T) {
	results := []QueryResult{
		okQuery("modern sofa",
			organicItem("Modern Sofa Gray", "https://example.com/sofa", map[string]any{
				"asin": "A1", "extracted_price": 350.0, "rating": 4.5, "reviews": float64(1200),
			})),
		okQuery("walnut coffee table",
			organicItem("Walnut Coffee Table", "https://example.com/table", map[string]any{
				"asin": "A2", "extracted_price": 150.0, "rating": 4.6, "reviews": float64(800),
			})),
		okQuery("floor lamp",
			organicItem("Arc Floor Lamp", "https://example.com/lamp", map[string]any{
				"asin": "A3", "extracted_price": 60.0, "rating": 4.4, "reviews": float64(500),
			})),
	}

	picks := PickProductsWithBudget(results, 900, "modern", "", nil, DefaultOptions())

	require.Len(t, picks, 3)
	assert.LessOrEqual(t, totalPicked(picks), 900.0)

	titles := map[string]bool{}
	for _, p := range picks {
		titles[p.Title] = true
	}
	assert.Len(t, titles, 3)
}

// 失败的查询整体排除，输出长度不超过成功查询数
func TestPickSkipsFailedQueries(t *testing.T) {
	results := []QueryResult{
		okQuery("floor lamp",
			organicItem("Arc Floor Lamp", "https://example.com/lamp", map[string]any{
				"asin": "A1", "extracted_price": 60.0, "rating": 4.4, "reviews": float64(500),
			})),
		{Query: "broken search", Success: false},
		{Query: "no data", Success: true, RawData: nil},
	}

	picks := PickProductsWithBudget(results, 500, "", "", nil, DefaultOptions())
	require.Len(t, picks, 1)
	assert.Equal(t, "Arc Floor Lamp", picks[0].Title)
}

// 预算为0表示不限预算：不设单查询上限，也不做预算修复
func TestPickZeroBudgetSkipsBudgetRepair(t *testing.T) {
	results := []QueryResult{
		okQuery("leather sofa",
			organicItem("Leather Sofa Grand", "https://example.com/sofa", map[string]any{
				"asin": "A1", "extracted_price": 5000.0, "rating": 4.8, "reviews": float64(2000),
			})),
		okQuery("standing desk",
			organicItem("Standing Desk Pro", "https://example.com/desk", map[string]any{
				"asin": "A2", "extracted_price": 4000.0, "rating": 4.7, "reviews": float64(1500),
			})),
	}

	picks := PickProductsWithBudget(results, 0, "", "", nil, DefaultOptions())
	require.Len(t, picks, 2)
	assert.Equal(t, 9000.0, totalPicked(picks))
}

// 主过滤一无所获时放宽条件，只要有价格就保留
func TestPickRelaxedFallback(t *testing.T) {
	results := []QueryResult{
		okQuery("cheap rug",
			organicItem("Budget Area Rug", "https://example.com/rug", map[string]any{
				"asin": "A1", "extracted_price": 20.0, "rating": 3.0, "reviews": float64(10),
			})),
	}

	picks := PickProductsWithBudget(results, 0, "", "", nil, DefaultOptions())
	require.Len(t, picks, 1)
	require.NotNil(t, picks[0].Rating)
	assert.Equal(t, 3.0, *picks[0].Rating)
}

// 没有价格的候选在两轮过滤后都不保留
func TestPickDropsUnpricedCandidates(t *testing.T) {
	results := []QueryResult{
		okQuery("mystery shelf",
			organicItem("Shelf Without Price", "https://example.com/shelf", map[string]any{
				"asin": "A1", "rating": 4.9, "reviews": float64(3000),
			})),
	}

	picks := PickProductsWithBudget(results, 500, "", "", nil, DefaultOptions())
	assert.Empty(t, picks)
}

// 类目冲突时第二个选择换成池内未占用类目的候选
func TestPickCategoryDiversity(t *testing.T) {
	results := []QueryResult{
		okQuery("velvet sofa",
			organicItem("Velvet Sofa Lux", "https://example.com/sofa1", map[string]any{
				"asin": "A1", "extracted_price": 80.0, "rating": 4.8, "reviews": float64(2000),
			})),
		okQuery("living room seating",
			organicItem("Modern Sectional", "https://example.com/sofa2", map[string]any{
				"asin": "A2", "extracted_price": 90.0, "rating": 4.7, "reviews": float64(1500),
			}),
			organicItem("Fabric Armchair", "https://example.com/chair", map[string]any{
				"asin": "A3", "extracted_price": 70.0, "rating": 4.2, "reviews": float64(80),
			})),
	}

	picks := PickProductsWithBudget(results, 0, "", "", nil, DefaultOptions())
	require.Len(t, picks, 2)
	assert.Equal(t, "Velvet Sofa Lux", picks[0].Title)
	assert.Equal(t, "Fabric Armchair", picks[1].Title)
}

// 类目全部互异时多样性修复不改变任何选择
func TestPickDiversityNoOpOnDistinctCategories(t *testing.T) {
	results := []QueryResult{
		okQuery("floor lamp",
			organicItem("Arc Floor Lamp", "https://example.com/lamp", map[string]any{
				"asin": "A1", "extracted_price": 60.0, "rating": 4.5, "reviews": float64(400),
			})),
		okQuery("wall mirror",
			organicItem("Round Wall Mirror", "https://example.com/mirror", map[string]any{
				"asin": "A2", "extracted_price": 40.0, "rating": 4.6, "reviews": float64(900),
			})),
	}

	picks := PickProductsWithBudget(results, 0, "", "", nil, DefaultOptions())
	require.Len(t, picks, 2)
	assert.Equal(t, "Arc Floor Lamp", picks[0].Title)
	assert.Equal(t, "Round Wall Mirror", picks[1].Title)
}

// 阈值为0表示关闭对应的质量过滤，低评分候选也能通过主过滤
// （主过滤有结果时超出价格上限的候选不会经放宽过滤进池）
func TestPickZeroThresholdsDisableQualityFilters(t *testing.T) {
	results := []QueryResult{
		okQuery("accent chair",
			organicItem("Premium Accent Chair", "https://example.com/c1", map[string]any{
				"asin": "A1", "extracted_price": 400.0, "rating": 4.9, "reviews": float64(3000),
			}),
			organicItem("Budget Accent Chair", "https://example.com/c2", map[string]any{
				"asin": "A2", "extracted_price": 50.0, "rating": 3.0, "reviews": float64(5),
			})),
	}

	opts := Options{MinRating: 0, MinReviews: 0, CapFlex: 1.25}
	picks := PickProductsWithBudget(results, 300, "", "", nil, opts)

	require.Len(t, picks, 1)
	assert.Equal(t, "Budget Accent Chair", picks[0].Title)
}

// 超预算时把性价比最差的选择换成池内更便宜的候选
func TestPickBudgetRepair(t *testing.T) {
	opts := Options{MinRating: 4.0, MinReviews: 50, CapFlex: 2.0}
	results := []QueryResult{
		okQuery("wood dresser",
			organicItem("Wood Dresser Deluxe", "https://example.com/d1", map[string]any{
				"asin": "A1", "extracted_price": 90.0, "rating": 4.2, "reviews": float64(100),
			}),
			organicItem("Dresser", "https://example.com/d2", map[string]any{
				"asin": "A2", "extracted_price": 30.0, "rating": 4.0,
			})),
		okQuery("table lamp",
			organicItem("Modern Table Lamp", "https://example.com/l1", map[string]any{
				"asin": "A3", "extracted_price": 40.0, "rating": 4.8, "reviews": float64(2000),
			})),
	}

	picks := PickProductsWithBudget(results, 100, "", "", nil, opts)
	require.Len(t, picks, 2)
	assert.LessOrEqual(t, totalPicked(picks), 100.0)
	assert.Equal(t, "Dresser", picks[0].Title)
	assert.Equal(t, "Modern Table Lamp", picks[1].Title)
}

// 池内没有替代时预算修复终止而不是死循环，允许超预算结果
func TestPickBudgetRepairTerminatesWhenStuck(t *testing.T) {
	results := []QueryResult{
		okQuery("grand piano bench",
			organicItem("Grand Bench", "https://example.com/b1", map[string]any{
				"asin": "A1", "extracted_price": 500.0, "rating": 4.5, "reviews": float64(300),
			})),
	}

	picks := PickProductsWithBudget(results, 100, "", "", nil, Options{CapFlex: 10})
	require.Len(t, picks, 1)
	assert.Equal(t, 500.0, totalPicked(picks))
}

// 重复ASIN的第二次出现换成池内未见过标识且类目不冲突的候选
func TestPickDedupeByASIN(t *testing.T) {
	dup := map[string]any{
		"asin": "X1", "extracted_price": 50.0, "rating": 4.6, "reviews": float64(900),
	}
	results := []QueryResult{
		okQuery("table lamp",
			organicItem("Greenwood Accent Piece", "https://example.com/x1", dup)),
		okQuery("wall mirror",
			organicItem("Greenwood Accent Piece", "https://example.com/x1", dup),
			organicItem("Oak Drawer Chest", "https://example.com/x2", map[string]any{
				"asin": "X2", "extracted_price": 45.0, "rating": 4.1, "reviews": float64(60),
			})),
	}

	picks := PickProductsWithBudget(results, 0, "", "", nil, DefaultOptions())
	require.Len(t, picks, 2)
	assert.Equal(t, "Greenwood Accent Piece", picks[0].Title)
	assert.Equal(t, "Oak Drawer Chest", picks[1].Title)
}

// 没有合适替代时保留重复项
func TestPickDedupeKeepsDuplicateWithoutAlternative(t *testing.T) {
	dup := map[string]any{
		"asin": "X1", "extracted_price": 50.0, "rating": 4.6, "reviews": float64(900),
	}
	results := []QueryResult{
		okQuery("table lamp",
			organicItem("Greenwood Accent Piece", "https://example.com/x1", dup)),
		okQuery("wall mirror",
			organicItem("Greenwood Accent Piece", "https://example.com/x1", dup)),
	}

	picks := PickProductsWithBudget(results, 0, "", "", nil, DefaultOptions())
	require.Len(t, picks, 2)
	assert.Equal(t, picks[0].Title, picks[1].Title)
}

// 全部查询失败：空输出，不报错
func TestPickAllQueriesFailed(t *testing.T) {
	results := []QueryResult{
		{Query: "a", Success: false},
		{Query: "b", Success: false},
	}
	picks := PickProductsWithBudget(results, 900, "", "", nil, DefaultOptions())
	assert.Empty(t, picks)
}

// 偏好类目的候选在同池竞争中胜出
func TestPickPreferredCategoryWins(t *testing.T) {
	results := []QueryResult{
		okQuery("bedroom furniture",
			organicItem("Oak Nightstand", "https://example.com/n1", map[string]any{
				"asin": "A1", "extracted_price": 80.0, "rating": 4.5, "reviews": float64(700),
			}),
			organicItem("Oak Dresser", "https://example.com/d1", map[string]any{
				"asin": "A2", "extracted_price": 80.0, "rating": 4.5, "reviews": float64(700),
			})),
	}

	picks := PickProductsWithBudget(results, 0, "", "", []string{"dresser"}, DefaultOptions())
	require.Len(t, picks, 1)
	assert.Equal(t, "Oak Dresser", picks[0].Title)
}
