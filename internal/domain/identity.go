package domain

import (
	"strconv"
	"strings"
)

// 站点常量：URL 校验与绝对地址拼接都以此为准。
// 不提供镜像域名配置：域名本身就是输入校验契约的一部分。
const (
	SiteHost   = "letterboxd.com"
	SiteOrigin = "https://" + SiteHost
)

// Mode 表示列表的两种形态。两者共用同一条抓取/分页/解析流水线，
// 只在 URL 形状与产物命名上有差异。
type Mode string

const (
	ModeList      Mode = "list"
	ModeWatchlist Mode = "watchlist"
)

// ListingIdentity 是从输入 URL 解析出的列表身份。
//
// 约束：
// - 一次 run 开始时计算一次，之后不再修改
// - 首页地址与产物名都由它确定（派生方法必须是纯函数）
type ListingIdentity struct {
	Owner      string
	Mode       Mode
	Collection string   // 仅 list 模式非空
	Filters    []string // 额外路径段（年代/类型过滤等），保持原有顺序
}

// FirstPageURL 返回规范化的首页地址（以 '/' 结尾）。
//
// - list：走 /detail/ 视图（海报卡片带完整数据），过滤段以 '/' 连接追加
// - watchlist：按身份重建原始地址（过滤段本来就在路径里），并丢弃 query/fragment
func (id ListingIdentity) FirstPageURL() string {
	var b strings.Builder
	b.WriteString(SiteOrigin)
	b.WriteByte('/')
	b.WriteString(id.Owner)
	b.WriteByte('/')

	switch id.Mode {
	case ModeList:
		b.WriteString("list/")
		b.WriteString(id.Collection)
		b.WriteString("/detail/")
	default:
		b.WriteString("watchlist/")
	}

	if len(id.Filters) > 0 {
		b.WriteString(strings.Join(id.Filters, "/"))
		b.WriteByte('/')
	}
	return b.String()
}

// PageURL 返回第 page 页的地址；page<=1 时即首页地址。
func (id ListingIdentity) PageURL(page int) string {
	first := id.FirstPageURL()
	if page <= 1 {
		return first
	}
	return first + "page/" + strconv.Itoa(page) + "/"
}

// OutputName 返回产物文件名（不含 .csv 后缀）。
//
// - list：{owner}_{collection}，有过滤段时追加 _{filters 以 '_' 连接}
// - watchlist：{owner}_watchlist，过滤段规则相同
func (id ListingIdentity) OutputName() string {
	var b strings.Builder
	b.WriteString(id.Owner)
	b.WriteByte('_')
	if id.Mode == ModeList {
		b.WriteString(id.Collection)
	} else {
		b.WriteString("watchlist")
	}
	if len(id.Filters) > 0 {
		b.WriteByte('_')
		b.WriteString(strings.Join(id.Filters, "_"))
	}
	return b.String()
}
