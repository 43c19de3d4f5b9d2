// model/tag.go
package model

// tagCategories is the Chinese Library Classification top-level scheme used
// for shelving. Codes are stored as-is; display names are looked up only when
// rendering output.
var tagCategories = map[string]string{
	"A": "马克思、列宁、毛泽东、邓小平理论",
	"B": "哲学、宗教",
	"C": "社会科学总论",
	"D": "政治、法律",
	"E": "军事",
	"F": "经济",
	"G": "文化、科学、教育、体育",
	"H": "语言、文字",
	"I": "文学",
	"J": "艺术",
	"K": "历史、地理",
	"N": "自然科学总论",
	"O": "数理科学和化学",
	"P": "天文学、地球科学",
	"Q": "生物科学",
	"R": "医药、卫生",
	"S": "农业科学",
	"T": "工业技术",
	"U": "交通运输",
	"V": "航空、航天",
	"X": "环境科学、安全科学",
	"Z": "综合性图书",
}

// ValidTag reports whether code is one of the fixed category codes.
func ValidTag(code string) bool {
	_, ok := tagCategories[code]
	return ok
}

// TagName returns the display name for a category code.
func TagName(code string) (string, bool) {
	name, ok := tagCategories[code]
	return name, ok
}
