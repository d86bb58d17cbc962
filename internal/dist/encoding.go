package dist

import "strings"

// Encoding 是响应中 Content-Encoding 的取值，空字符串表示未压缩。
type Encoding string

const (
	EncodingIdentity Encoding = ""
	EncodingBrotli   Encoding = "br"
	// EncodingGzip 在线上使用 "gz" 而不是标准的 "gzip"，与既有客户端保持兼容。
	EncodingGzip Encoding = "gz"
)

// Preference 是从 Accept-Encoding 解析出的 token 集合，只关心是否出现，不处理 q 值。
type Preference map[string]struct{}

// ParseAcceptEncoding 按逗号拆分并去掉 ";q=..." 参数，token 统一转为小写。
func ParseAcceptEncoding(header string) Preference {
	pref := Preference{}
	for _, part := range strings.Split(header, ",") {
		token, _, _ := strings.Cut(part, ";")
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		pref[token] = struct{}{}
	}
	return pref
}

// Accepts 判断集合中是否包含 enc 所属家族的 token，"*" 视为接受全部。
func (p Preference) Accepts(enc Encoding) bool {
	if enc == EncodingIdentity {
		return true
	}
	if p.has("*") {
		return true
	}
	switch enc {
	case EncodingBrotli:
		return p.has("br")
	case EncodingGzip:
		return p.has("gzip") || p.has("x-gzip") || p.has("gz")
	}
	return false
}

func (p Preference) has(token string) bool {
	_, ok := p[token]
	return ok
}
