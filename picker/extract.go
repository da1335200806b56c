package picker

// QueryResult 一次外部商品搜索的结果
// 失败或无数据的查询在挑选时被整体排除，不作为空候选占位
type QueryResult struct {
	Query   string         `json:"query"`
	Success bool           `json:"success"`
	RawData map[string]any `json:"raw_data"`
}

// ExtractCandidates 将一份原始搜索结果文档转换为候选列表
// 依次读取自然结果和广告结果两条来源；上游字段缺失或格式异常是常态，
// 一律按默认值兜底，绝不报错。没有标题或没有任何链接的记录被静默丢弃
func ExtractCandidates(raw map[string]any, queryText string, queryIndex int) []Candidate {
	var cands []Candidate

	// 自然结果（优先）
	for _, item := range asMapList(raw["organic_results"]) {
		title := asString(item["title"])
		price := priceOf(item)
		cands = append(cands, Candidate{
			QueryIndex:      queryIndex,
			QueryText:       queryText,
			ASIN:            asString(item["asin"]),
			Title:           title,
			Link:            asString(item["link"]),
			LinkClean:       fallback(asString(item["link_clean"]), asString(item["link"])),
			Thumbnail:       asString(item["thumbnail"]),
			Rating:          ParsePrice(item["rating"]),
			Reviews:         ParseCount(item["reviews"]),
			Price:           price,
			BoughtLastMonth: asString(item["bought_last_month"]),
			Delivery:        asStringList(item["delivery"]),
			Prime:           asBool(item["prime"]),
			Badges:          asStringList(item["badges"]),
			Category:        InferCategory(title + " " + queryText),
		})
	}

	// 广告结果（次级来源）：信息量低、可信度低
	// 不透传bought_last_month和delivery，badge强制标记为Sponsored以便下游可见
	ads := asMap(raw["product_ads"])
	for _, item := range asMapList(ads["products"]) {
		title := asString(item["title"])
		price := priceOf(item)
		cands = append(cands, Candidate{
			QueryIndex: queryIndex,
			QueryText:  queryText,
			ASIN:       asString(item["asin"]),
			Title:      title,
			Link:       asString(item["link"]),
			LinkClean:  fallback(asString(item["link_clean"]), asString(item["link"])),
			Thumbnail:  fallback(asString(item["thumbnail"]), asString(ads["image"])),
			Rating:     ParsePrice(item["rating"]),
			Reviews:    ParseCount(item["reviews"]),
			Price:      price,
			Prime:      asBool(item["prime"]),
			Badges:     []string{"Sponsored"},
			Category:   InferCategory(title + " " + queryText),
		})
	}

	out := cands[:0]
	for _, c := range cands {
		if c.Title == "" {
			continue
		}
		if c.Link == "" && c.LinkClean == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// priceOf 价格字段回退链：extracted_price为空值时才读price
// 注意回退条件是原始值为空，不是解析失败：存在但解析不出数字的
// extracted_price得到0，不会回退到price
func priceOf(item map[string]any) float64 {
	v := item["extracted_price"]
	if isEmptyValue(v) {
		v = item["price"]
	}
	return ParsePrice(v)
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0
	case float32:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	case bool:
		return !x
	default:
		return false
	}
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	default:
		return false
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asMapList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func asStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
