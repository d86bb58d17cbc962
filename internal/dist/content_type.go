package dist

import "strings"

// contentTypes 按扩展名精确匹配（区分大小写）。
var contentTypes = map[string]string{
	"js":  "application/javascript; charset=utf-8",
	"css": "text/css",
}

const defaultContentType = "text/plain"

// ContentType 取最后一个路径段中最后一个点之后的扩展名查表，未知扩展名返回 text/plain。
func ContentType(assetPath string) string {
	name := assetPath
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return defaultContentType
	}
	if ct, ok := contentTypes[name[idx+1:]]; ok {
		return ct
	}
	return defaultContentType
}
