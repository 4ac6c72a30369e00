// Package hashtag 提供话题的提取、slug 归一化与链接渲染，不依赖存储
package hashtag

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 话题：# 后跟字母（含带重音的拉丁字母 À-ÿ）、数字或下划线
var tagPattern = regexp.MustCompile(`#([a-zA-Z\x{00C0}-\x{00FF}0-9_]+)`)

var slugInvalid = regexp.MustCompile(`[^a-z0-9_]`)

// LinkPrefix 话题页面路径前缀
const LinkPrefix = "/hashtag/"

// Extract 提取文本中的话题名（不含 #），统一小写，按首次出现顺序去重
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Slugify 小写、NFD 分解并去掉重音符号，再删除 [a-z0-9_] 以外的字符
// "Café" 与 "cafe" 得到同一个 slug
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		stripped = strings.ToLower(name)
	}
	return slugInvalid.ReplaceAllString(stripped, "")
}

// RenderWithLinks 把文本中的话题替换为链接
// 链接指向 slug（与话题查询一致），链接文字保留原始写法；其余文本做 HTML 转义
func RenderWithLinks(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	last := 0
	for _, loc := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		token := text[loc[2]:loc[3]]
		slug := Slugify(token)
		if slug == "" {
			b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		} else {
			b.WriteString(`<a href="` + LinkPrefix + slug + `" class="hashtag">#` + html.EscapeString(token) + `</a>`)
		}
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
