package listing

import (
	"net/url"
	"strings"

	"github.com/John-Robertt/BOXD/internal/domain"
)

// InvalidURLError 表示输入 URL 未通过域名或路径形状校验。
// 校验发生在任何网络访问之前；上层可把它映射为 error_code=invalid_url。
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	if strings.TrimSpace(e.Reason) == "" {
		return "无效的列表 URL：" + e.URL
	}
	return "无效的列表 URL（" + e.Reason + "）：" + e.URL
}

// Extract 从输入 URL 解析出唯一的 ListingIdentity。
//
// 约束：
// - 纯函数：不发任何网络请求
// - host 必须严格等于 letterboxd.com（不接受 www. 前缀或端口）
// - 路径第二段必须是 list（且至少 3 段）或 watchlist（且至少 2 段）
// 若校验失败，返回 *InvalidURLError。
func Extract(raw string) (domain.ListingIdentity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ListingIdentity{}, &InvalidURLError{URL: raw, Reason: "URL 为空"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return domain.ListingIdentity{}, &InvalidURLError{URL: raw, Reason: "无法解析"}
	}
	if strings.ToLower(u.Host) != domain.SiteHost {
		return domain.ListingIdentity{}, &InvalidURLError{URL: raw, Reason: "不是 " + domain.SiteHost + " 域名"}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return domain.ListingIdentity{}, &InvalidURLError{URL: raw, Reason: "路径不含 /list/ 或 /watchlist/"}
	}

	switch parts[1] {
	case "list":
		if len(parts) < 3 {
			return domain.ListingIdentity{}, &InvalidURLError{URL: raw, Reason: "列表 URL 缺少列表名"}
		}
		return domain.ListingIdentity{
			Owner:      parts[0],
			Mode:       domain.ModeList,
			Collection: parts[2],
			Filters:    append([]string(nil), parts[3:]...),
		}, nil
	case "watchlist":
		return domain.ListingIdentity{
			Owner:   parts[0],
			Mode:    domain.ModeWatchlist,
			Filters: append([]string(nil), parts[2:]...),
		}, nil
	default:
		return domain.ListingIdentity{}, &InvalidURLError{URL: raw, Reason: "路径不含 /list/ 或 /watchlist/"}
	}
}
