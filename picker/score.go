package picker

import (
	"math"
	"strings"
)

// 评分各信号的权重，保持透明可调试的线性模型，不做跨候选归一化
const (
	weightRating      = 4.0
	weightReviews     = 3.0
	weightStyleMatch  = 2.0
	weightKeywords    = 2.0
	weightPrime       = 1.0
	weightNotes       = 1.0
	weightCategory    = 1.5
	weightPricePen    = 1.5
	weightRiskPen     = 2.0
	dealFlagBoost     = 0.5
	lowRatingCutoff   = 3.8
	reviewsNormAnchor = 10000 // log1p归一化锚点：一万条评论接近满分
)

// longLeadMarkers 发货周期过长的提示词（远期月份/长交期）
var longLeadMarkers = []string{"oct", "nov", "dec", "3 weeks", "next year"}

func normRating(r float64) float64 {
	return math.Max(0, math.Min(5, r)) / 5.0
}

func normReviews(n int) float64 {
	if n < 0 {
		n = 0
	}
	return math.Log1p(float64(n)) / math.Log(reviewsNormAnchor+1)
}

// ScoreCandidate 计算单个候选的期望度得分
// 纯函数：仅依赖入参，无隐藏状态。得分只用于挑选/替换时的相对比较，
// 不作为绝对质量指标对外展示
func ScoreCandidate(c *Candidate, styleTokens, queryTokens []string, targetPrice float64, notesTokens []string, preferredCategories map[string]bool) float64 {
	title := strings.ToLower(c.Title)

	styleMatch := 0.0
	styleSet := make(map[string]bool, len(styleTokens))
	for _, tok := range styleTokens {
		styleSet[tok] = true
		if styleMatch == 0 && strings.Contains(title, tok) {
			styleMatch = 1.0
		}
	}

	// 查询里除风格词以外的token必须全部命中标题
	kwMatch := 1.0
	for _, tok := range queryTokens {
		if styleSet[tok] {
			continue
		}
		if !strings.Contains(title, tok) {
			kwMatch = 0.0
			break
		}
	}

	notesMatch := 0.0
	if len(notesTokens) > 0 {
		hits := 0
		for _, tok := range notesTokens {
			if strings.Contains(title, tok) {
				hits++
			}
		}
		switch {
		case hits >= 3:
			notesMatch = 1.0
		case hits >= 1:
			notesMatch = 0.5
		}
	}

	catPriority := 0.0
	if preferredCategories[c.Category] {
		catPriority = 1.0
	}

	primeFlag := 0.0
	if c.Prime {
		primeFlag = 1.0
	}

	dealFlag := 0.0
	for _, b := range c.Badges {
		switch strings.ToLower(b) {
		case "overall pick", "limited time deal":
			dealFlag = dealFlagBoost
		}
	}

	// 超过目标单价才产生价格惩罚
	pricePenalty := 0.0
	if targetPrice > 0 && c.Price > targetPrice {
		pricePenalty = (c.Price - targetPrice) / math.Max(1.0, targetPrice)
	}

	delivery := strings.ToLower(strings.Join(c.Delivery, " "))
	lowRatingPen := 0.0
	if c.Rating != 0 && c.Rating < lowRatingCutoff {
		lowRatingPen = 1.0
	}
	preOrderPen := 0.0
	if strings.Contains(delivery, "pre-order") || strings.Contains(delivery, "preorder") {
		preOrderPen = 1.0
	}
	longShipPen := 0.0
	for _, marker := range longLeadMarkers {
		if strings.Contains(delivery, marker) {
			longShipPen = 0.5
			break
		}
	}

	return weightRating*normRating(c.Rating) +
		weightReviews*normReviews(c.Reviews) +
		weightStyleMatch*styleMatch +
		weightKeywords*kwMatch +
		weightPrime*primeFlag +
		dealFlag +
		weightNotes*notesMatch +
		weightCategory*catPriority -
		weightPricePen*pricePenalty -
		weightRiskPen*(lowRatingPen+preOrderPen+longShipPen)
}
