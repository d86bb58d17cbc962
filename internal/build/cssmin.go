package build

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// MinifyCSS 对样式表分词后输出紧凑形式：去掉注释、折叠空白、删除结构字符两侧
// 以及冒号之后的空白、去掉块末尾多余的分号。字符串与 url() 原样保留。
func MinifyCSS(src string) (string, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.Grow(len(src))

	var prev *scanner.Token
	pendingSpace := false
	// 注释不是空白：只有两侧都是词类 token 时才需要一个空格来保持 token 边界。
	afterComment := false
	for i, tok := range tokens {
		switch tok.Type {
		case scanner.TokenS:
			pendingSpace = true
			continue
		case scanner.TokenComment:
			afterComment = true
			continue
		}
		if isChar(tok, ";") && (dropSemicolon(prev) || closesBlock(tokens, i)) {
			continue
		}
		switch {
		case pendingSpace && prev != nil && needsSpace(prev, tok):
			out.WriteByte(' ')
		case afterComment && isWord(prev) && isWord(tok):
			out.WriteByte(' ')
		}
		pendingSpace = false
		afterComment = false
		out.WriteString(tok.Value)
		prev = tok
	}

	return out.String(), nil
}

// tokenize 返回去掉 BOM 与 HTML 注释标记后的 token 序列，注释 token 保留给调用方判断边界。
func tokenize(src string) ([]*scanner.Token, error) {
	s := scanner.New(strings.ToValidUTF8(src, "\uFFFD"))
	var tokens []*scanner.Token
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return tokens, nil
		case scanner.TokenError:
			return nil, &SyntaxError{Line: tok.Line, Column: tok.Column, Reason: tok.Value}
		case scanner.TokenBOM, scanner.TokenCDO, scanner.TokenCDC:
		default:
			tokens = append(tokens, tok)
		}
	}
}

// needsSpace 判断两个 token 之间的空白是否有语义。
func needsSpace(prev, next *scanner.Token) bool {
	if isChar(prev, "{", "}", ";", ",", ">", ":", "(") {
		return false
	}
	if isChar(next, "{", "}", ";", ",", ">", ")") {
		return false
	}
	return true
}

func dropSemicolon(prev *scanner.Token) bool {
	return prev == nil || isChar(prev, ";", "{")
}

// closesBlock 判断 tokens[i] 之后（跳过空白与分号）是否紧跟 "}"。
func closesBlock(tokens []*scanner.Token, i int) bool {
	for _, tok := range tokens[i+1:] {
		if tok.Type == scanner.TokenS || tok.Type == scanner.TokenComment || isChar(tok, ";") {
			continue
		}
		return isChar(tok, "}")
	}
	return false
}

// isWord 判断 token 与相邻词类 token 直接拼接时是否会被重新分词为一个 token。
func isWord(tok *scanner.Token) bool {
	if tok == nil {
		return false
	}
	switch tok.Type {
	case scanner.TokenIdent, scanner.TokenAtKeyword, scanner.TokenHash, scanner.TokenNumber,
		scanner.TokenDimension, scanner.TokenPercentage, scanner.TokenUnicodeRange, scanner.TokenFunction:
		return true
	}
	return false
}

func isChar(tok *scanner.Token, values ...string) bool {
	if tok == nil || tok.Type != scanner.TokenChar {
		return false
	}
	for _, v := range values {
		if tok.Value == v {
			return true
		}
	}
	return false
}
