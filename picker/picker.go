package picker

import (
	"math"
	"sort"
)

// Options 挑选过程的可调阈值
// MinRating/MinReviews为0表示关闭对应的质量过滤；
// CapFlex 是单查询价格上限的弹性倍数，非正值时使用默认值
type Options struct {
	MinRating  float64
	MinReviews int
	CapFlex    float64
}

// DefaultOptions 返回默认阈值
func DefaultOptions() Options {
	return Options{
		MinRating:  4.0,
		MinReviews: 50,
		CapFlex:    1.25,
	}
}

// PickProductsWithBudget 在全局预算约束下为每个查询挑选一件商品
//
// 流程严格按序执行：过滤失败查询 → 推导全局参数 → 逐查询构建打分排序后的
// 候选池 → 取每池榜首作为初始选择 → 类目多样性修复 → 预算修复 → 商品标识
// 去重 → 生成输出。三轮修复都在同一个按查询位置对齐的选择数组上就地进行。
//
// budget为0或负数表示不限预算：不设单查询价格上限，也不执行预算修复。
// 上游数据缺陷一律降级为"更少或质量更低的选择"，本函数不产生错误。
func PickProductsWithBudget(queryResults []QueryResult, budget float64, style, notes string, selectedProducts []string, opts Options) []PickedProduct {
	if opts.CapFlex <= 0 {
		opts.CapFlex = DefaultOptions().CapFlex
	}

	var queries []QueryResult
	for _, qr := range queryResults {
		if qr.Success && qr.RawData != nil {
			queries = append(queries, qr)
		}
	}
	if len(queries) == 0 {
		return []PickedProduct{}
	}

	n := len(queries)
	perCap := 0.0
	if budget > 0 {
		perCap = budget / float64(n)
	}

	styleTokens := Tokenize(style)
	notesTokens := Tokenize(notes)
	preferred := make(map[string]bool, len(selectedProducts))
	for _, p := range selectedProducts {
		preferred[InferCategory(p)] = true
	}

	pools := make([][]*Candidate, 0, n)
	for qidx, qr := range queries {
		cands := ExtractCandidates(qr.RawData, qr.Query, qidx)

		base := make([]*Candidate, 0, len(cands))
		for i := range cands {
			c := &cands[i]
			if c.Price <= 0 {
				continue
			}
			if c.Rating != 0 && c.Rating < opts.MinRating {
				continue
			}
			if c.Reviews != 0 && c.Reviews < opts.MinReviews {
				continue
			}
			if perCap > 0 && c.Price > perCap*opts.CapFlex {
				continue
			}
			base = append(base, c)
		}

		// 主过滤一无所获时放宽条件：只要有价格就进池，
		// 保证每个查询尽可能贡献一个选择而不是静默消失
		if len(base) == 0 {
			for i := range cands {
				if cands[i].Price > 0 {
					base = append(base, &cands[i])
				}
			}
		}

		qTokens := Tokenize(qr.Query)
		for _, c := range base {
			c.Score = ScoreCandidate(c, styleTokens, qTokens, perCap, notesTokens, preferred)
		}
		// 稳定排序：同分保持抽取顺序（自然结果在前，广告在后）
		sort.SliceStable(base, func(i, j int) bool {
			return base[i].Score > base[j].Score
		})
		pools = append(pools, base)
	}

	picks := make([]*Candidate, n)
	for i, pool := range pools {
		if len(pool) > 0 {
			picks[i] = pool[0]
		}
	}

	picks = enforceCategoryDiversity(picks, pools)
	if budget > 0 {
		picks = reconcileBudget(picks, pools, budget)
	}
	picks = dedupeByASIN(picks, pools)

	out := make([]PickedProduct, 0, n)
	for _, p := range picks {
		if p != nil {
			out = append(out, p.ToResult())
		}
	}
	return out
}

// enforceCategoryDiversity 单次从左到右的类目多样性修复
// 类目已被占用的选择尝试换成池内第一个未占用类目的候选；
// 找不到就保留重复类目的选择（多样性是尽力而为，不做保证）
func enforceCategoryDiversity(picks []*Candidate, pools [][]*Candidate) []*Candidate {
	used := make(map[string]bool)
	for i, p := range picks {
		if p == nil {
			continue
		}
		if used[p.Category] {
			for _, alt := range pools[i][1:] {
				if !used[alt.Category] {
					picks[i] = alt
					break
				}
			}
		}
		used[picks[i].Category] = true
	}
	return picks
}

func totalCost(picks []*Candidate) float64 {
	sum := 0.0
	for _, p := range picks {
		if p != nil {
			sum += p.Price
		}
	}
	return sum
}

// reconcileBudget 迭代修复总价超预算的选择集合
//
// 每轮找出性价比（得分/价格）最差的选择，尝试用其池内不引入类目冲突的
// 候选替换；替换被接受的条件是总价回到预算内，或者替换方的性价比严格
// 更高（后者允许在预算无法满足时仍然提升效率，而不是空转）。
// 终止条件必须显式检查"本轮是否发生过替换"：预算不可满足时没有这个
// 检查循环不会结束
func reconcileBudget(picks []*Candidate, pools [][]*Candidate, budget float64) []*Candidate {
	changed := true
	for changed && totalCost(picks) > budget {
		changed = false

		worst := -1
		worstRatio := 0.0
		for i, p := range picks {
			if p == nil || p.Price <= 0 {
				continue
			}
			ratio := p.Score / math.Max(1.0, p.Price)
			if worst == -1 || ratio < worstRatio {
				worst = i
				worstRatio = ratio
			}
		}
		if worst == -1 {
			break
		}

		pool := pools[worst]
		if len(pool) <= 1 {
			continue
		}
		curr := picks[worst]
		for _, alt := range pool[1:] {
			catsNow := make(map[string]bool)
			for _, p := range picks {
				if p != nil {
					catsNow[p.Category] = true
				}
			}
			delete(catsNow, curr.Category)
			if catsNow[alt.Category] {
				continue
			}

			trialCost := totalCost(picks) - curr.Price + alt.Price
			if trialCost <= budget || alt.Score/alt.Price > curr.Score/curr.Price {
				picks[worst] = alt
				changed = true
				break
			}
		}
	}
	return picks
}

// dedupeByASIN 单次从左到右的商品标识去重
// 已出现过的ASIN换成池内第一个标识未见过且类目不与当前选择集冲突的候选；
// 池内没有合适的替代时保留重复项（属于接受的行为，不视为缺陷）
func dedupeByASIN(picks []*Candidate, pools [][]*Candidate) []*Candidate {
	seen := make(map[string]bool)
	for i, p := range picks {
		if p == nil {
			continue
		}
		if p.ASIN != "" && seen[p.ASIN] {
			usedCats := make(map[string]bool)
			for _, q := range picks {
				if q != nil {
					usedCats[q.Category] = true
				}
			}
			for _, alt := range pools[i] {
				if !seen[alt.ASIN] && !usedCats[alt.Category] {
					picks[i] = alt
					break
				}
			}
		}
		if picks[i] != nil && picks[i].ASIN != "" {
			seen[picks[i].ASIN] = true
		}
	}
	return picks
}
