package picker

import (
	"strconv"
	"strings"
)

// Candidate 单个查询下发现的一个商品候选记录
// Category 在抽取时推断一次，之后不再重算；Score 由打分器在每次挑选前计算
type Candidate struct {
	QueryIndex      int
	QueryText       string
	ASIN            string // 提供方的唯一商品标识，可能为空，用于跨查询去重
	Title           string
	Link            string
	LinkClean       string
	Thumbnail       string
	Rating          float64 // [0,5]，0表示未知
	Reviews         int     // 0表示未知
	Price           float64 // 0表示没有可用价格
	BoughtLastMonth string
	Delivery        []string
	Prime           bool
	Badges          []string
	Category        string
	Score           float64
}

// PickedProduct 对外输出的推荐商品记录
type PickedProduct struct {
	Title           string   `json:"title"`
	Link            string   `json:"link"`
	LinkClean       string   `json:"link_clean"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Rating          *float64 `json:"rating"`
	Reviews         *int     `json:"reviews"`
	BoughtLastMonth string   `json:"bought_last_month,omitempty"`
	Price           *string  `json:"price"`
	ExtractedPrice  *float64 `json:"extracted_price"`
	Delivery        []string `json:"delivery"`
}

// ToResult 将候选转换为对外结果记录
// 零值的评分/评论数/价格输出为null而不是0
func (c *Candidate) ToResult() PickedProduct {
	out := PickedProduct{
		Title:           c.Title,
		Link:            c.Link,
		LinkClean:       c.LinkClean,
		Thumbnail:       c.Thumbnail,
		BoughtLastMonth: c.BoughtLastMonth,
		Delivery:        c.Delivery,
	}
	if out.LinkClean == "" {
		out.LinkClean = c.Link
	}
	if out.Delivery == nil {
		out.Delivery = []string{}
	}
	if c.Rating != 0 {
		r := c.Rating
		out.Rating = &r
	}
	if c.Reviews != 0 {
		n := c.Reviews
		out.Reviews = &n
	}
	if c.Price > 0 {
		p := c.Price
		s := FormatPrice(p)
		out.Price = &s
		out.ExtractedPrice = &p
	}
	return out
}

// FormatPrice 将价格格式化为 $X,XXX.XX 形式的货币字符串
func FormatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	neg := ""
	if strings.HasPrefix(intPart, "-") {
		neg = "-"
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return neg + "$" + b.String() + frac
}
