// Package letterboxd 提供 letterboxd.com 列表页的抓取与 HTML 解析。
package letterboxd

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/BOXD/internal/domain"
)

// Page 是一个已解析的列表页。
//
// 约束：
// - 解析永不失败：任意字节都能得到一个可用的 Page（可能是 0 张卡片）
// - Entries 的顺序与 HTML 文档顺序一致
// - 卡片缺字段时用空串占位，不丢弃整条记录
type Page struct {
	raw []byte
	doc *goquery.Document
}

// ParsePage 把响应 body 解析为 Page。
func ParsePage(body []byte) Page {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{raw: body}
	}
	return Page{raw: body, doc: doc}
}

// Raw 返回原始响应 body（用于页面快照）。
func (p Page) Raw() []byte { return p.raw }

// PageCount 从第一个分页块推断该列表的总页数。
//
// 只统计文本为纯 ASCII 数字的 <a> 标签（“Older/Newer”一类的翻页链接、
// 表示当前页的 <span> 都会被跳过）；页面没有分页块时总页数为 1。
func (p Page) PageCount() int {
	if p.doc == nil {
		return 1
	}
	max := 1
	p.doc.Find("div.pagination").First().Find("a").Each(func(_ int, a *goquery.Selection) {
		t := a.Text()
		if !isASCIIDigits(t) {
			return
		}
		n, err := strconv.Atoi(t)
		if err != nil || n <= max {
			return
		}
		max = n
	})
	return max
}

// Entries 按文档顺序提取页内全部影片卡片。
func (p Page) Entries() []domain.Entry {
	if p.doc == nil {
		return nil
	}
	cards := p.doc.Find("div.film-poster")
	out := make([]domain.Entry, 0, cards.Length())
	cards.Each(func(_ int, sel *goquery.Selection) {
		out = append(out, entryFromCard(goqueryCard{sel: sel}))
	})
	return out
}

// card 是构建单条 Entry 所需的最小卡片能力。
// 版式字段的定位细节全部收在唯一的 goquery 适配器里，条目构建规则对其保持纯函数。
type card interface {
	imageAlt() (alt string, ok bool)
	targetLink() string
}

type goqueryCard struct {
	sel *goquery.Selection
}

func (c goqueryCard) imageAlt() (string, bool) {
	return c.sel.Find("img").First().Attr("alt")
}

func (c goqueryCard) targetLink() string {
	link, _ := c.sel.Attr("data-target-link")
	return link
}

func entryFromCard(c card) domain.Entry {
	title := titleFromAlt(c.imageAlt())

	// data-target-link 缺失时 url 与 year 同时留空（year 只能从链接 slug 推断）。
	link := c.targetLink()
	if link == "" {
		return domain.Entry{Title: title}
	}
	return domain.Entry{
		Year:  yearFromLink(link),
		Title: title,
		URL:   domain.SiteOrigin + link,
	}
}

func titleFromAlt(alt string, ok bool) string {
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(alt, "Poster for "))
}

// yearFromLink 取链接 slug 最后一个连字符后的片段：恰为 4 位 ASCII 数字时视为年份。
// 注意这是对 slug 的字面推断（例如 /film/blade-runner-2049/ 会得到 "2049"）。
func yearFromLink(link string) string {
	slug := strings.Trim(link, "/")
	if i := strings.LastIndexByte(slug, '/'); i >= 0 {
		slug = slug[i+1:]
	}
	if i := strings.LastIndexByte(slug, '-'); i >= 0 {
		slug = slug[i+1:]
	}
	if len(slug) == 4 && isASCIIDigits(slug) {
		return slug
	}
	return ""
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
