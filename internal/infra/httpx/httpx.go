// Package httpx 构造带统一网络策略的 HTTP client。
package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// userAgent 是发往站点的固定浏览器标识。
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// Transport 把“浏览器 UA + 代理 + keep-alive 策略”固化为统一策略。
//
// 设计目标：抓取方只负责“定位页面 + 解析 HTML”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	r := cloneRequest(req)
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", userAgent)
	}
	if t.DisableKeepAlives {
		// 额外保险：即使上层误用了其它 Transport，也尽量不复用连接。
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

func cloneRequest(req *http.Request) *http.Request {
	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	return req.Clone(req.Context())
}

// New 构造用于列表页抓取的 HTTP client。
//
// 规则：
// - 未显式设置 UA 的请求统一注入固定浏览器 UA
// - proxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - 不设超时、不做重试：请求的生命周期交给调用方的 ctx
func New(proxyURL string) (*http.Client, error) {
	base := &http.Transport{}

	disableKeepAlives := false
	if proxyURL = strings.TrimSpace(proxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	return &http.Client{
		Transport: &Transport{Base: base, DisableKeepAlives: disableKeepAlives},
	}, nil
}
