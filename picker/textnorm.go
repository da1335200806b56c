package picker

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	pricePattern = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)
	countPattern = regexp.MustCompile(`[0-9,]+`)
	tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)
)

// ParsePrice 从任意JSON值中解析价格数字
// 接受数字类型或形如 "$1,234.56" 的字符串；无法解析时返回0，永不报错
func ParsePrice(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return 0
		}
		m := pricePattern.FindString(s)
		if m == "" {
			return 0
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ParseCount 从任意JSON值中解析整数计数（如评论数），去掉千位分隔符
// 无法解析时返回0，永不报错
func ParseCount(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case string:
		m := countPattern.FindString(x)
		if m == "" {
			return 0
		}
		n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Tokenize 将文本切分为小写的字母数字token序列，空输入返回空序列
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}
