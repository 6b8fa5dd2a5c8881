package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// FetchError 表示某个列表页抓取失败（非 200 状态码，或传输层错误）。
// 上层据此把运行归类为 fetch_failed，并生成可操作的 error_msg。
type FetchError struct {
	URL        string
	StatusCode int // 0 表示请求未得到 HTTP 响应
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d url=%s", e.StatusCode, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch url=%s: %v", e.URL, e.Err)
	}
	return "fetch url=" + e.URL
}

func (e *FetchError) Unwrap() error { return e.Err }

// Site 是对站点的只读访问：抓取单个列表页。
type Site struct{}

// FetchPage 抓取并解析一个列表页。
//
// 约束：
// - 每页恰好一次 GET：不重试、不限速、不设额外超时（生命周期由 ctx 与 client 决定）
// - 只接受 HTTP 200，其余状态码返回 *FetchError
// - 重定向交给 http.Client 默认行为（自动跟随）
// - 200 + 空 body 是合法页面（解析为 0 张卡片）
func (Site) FetchPage(ctx context.Context, c *http.Client, pageURL string) (Page, error) {
	if c == nil {
		return Page{}, errors.New("http client 不能为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, &FetchError{URL: pageURL, Err: err}
	}
	resp, err := c.Do(req)
	if err != nil {
		return Page{}, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, &FetchError{URL: pageURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Page{}, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	return ParsePage(b), nil
}
