package picker

import (
	"regexp"
	"strings"
)

type categoryPattern struct {
	tag string
	re  *regexp.Regexp
}

// categoryPatterns 类目匹配规则表
// 注意：顺序即优先级，按序匹配第一个命中的规则
// 例如 "coffee table" 必须排在 "side table"/其他宽泛规则之前，不要为了可读性调整顺序
var categoryPatterns = []categoryPattern{
	{"bed", regexp.MustCompile(`\bbed\b|\bplatform\b.*\bbed\b|\bbed frame\b`)},
	{"nightstand", regexp.MustCompile(`\bnight\s*stand\b|\bbedside\b`)},
	{"dresser", regexp.MustCompile(`\bdresser\b|\bchest\b|\bdrawer\b`)},
	{"sofa", regexp.MustCompile(`\bsofa\b|\bcouch\b|\bsectional\b|\bloveseat\b`)},
	{"chair", regexp.MustCompile(`\baccent chair\b|\barmchair\b|\bdining chair\b|\boffice chair\b|\bstool\b`)},
	{"coffee_table", regexp.MustCompile(`\bcoffee table\b`)},
	{"side_table", regexp.MustCompile(`\bside table\b|\bend table\b`)},
	{"desk", regexp.MustCompile(`\bdesk\b|\bworkspace\b|\bcomputer desk\b`)},
	{"rug", regexp.MustCompile(`\brug\b|\b8x10\b|\b5x7\b|\brunner\b`)},
	{"lamp", regexp.MustCompile(`\blamp\b|\bfloor lamp\b|\btable lamp\b`)},
	{"ceiling_fan", regexp.MustCompile(`\bceiling fan\b|\bflush mount fan\b`)},
	{"shelf", regexp.MustCompile(`\bshelf\b|\bbookshelf\b|\bbookcase\b|\bwall shelf\b`)},
	{"media_console", regexp.MustCompile(`\btv stand\b|\bmedia console\b|\bentertainment center\b`)},
	{"curtains", regexp.MustCompile(`\bcurtain\b|\bdrape\b`)},
	{"mirror", regexp.MustCompile(`\bmirror\b`)},
	{"wall_art", regexp.MustCompile(`\bwall art\b|\bposter\b|\bprint\b|\bframed\b`)},
	{"plant", regexp.MustCompile(`\bplanter\b|\bfaux plant\b|\bpotted\b`)},
}

// CategoryOther 未命中任何规则时的兜底类目
const CategoryOther = "other"

// InferCategory 根据描述文本推断家具/装饰类目，大小写不敏感
func InferCategory(text string) string {
	t := strings.ToLower(text)
	for _, p := range categoryPatterns {
		if p.re.MatchString(t) {
			return p.tag
		}
	}
	return CategoryOther
}
