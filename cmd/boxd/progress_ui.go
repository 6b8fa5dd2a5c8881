package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/BOXD/internal/app/run"
	"github.com/John-Robertt/BOXD/internal/config"
	"github.com/John-Robertt/BOXD/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是一个“简洁版”的交互终端进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：长时间没有页面完成时也会定期输出一行，降低等待焦虑
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total  int
	done   int
	movies int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, rawURL string) {
	now := time.Now()

	p.mu.Lock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] BOXD export\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  url: %s\n", truncate(rawURL, 120))
	fmt.Fprintf(p.w, "  out: %s\n", eff.OutDir)
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	if strings.TrimSpace(eff.LogFile) != "" {
		fmt.Fprintf(p.w, "  log: %s\n", eff.LogFile)
	}
	if strings.TrimSpace(eff.SnapshotDir) != "" {
		fmt.Fprintf(p.w, "  snapshot: %s\n", eff.SnapshotDir)
	}
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	p.mu.Unlock()
}

func (p *progressUI) OnResolved(id domain.ListingIdentity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "列表: owner=%s mode=%s", id.Owner, id.Mode)
	if id.Collection != "" {
		fmt.Fprintf(p.w, " collection=%s", id.Collection)
	}
	if len(id.Filters) > 0 {
		fmt.Fprintf(p.w, " filters=%s", formatStringListJSON(id.Filters))
	}
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "输出: %s.csv\n", id.OutputName())

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "paginate":
		p.total = intField(fields, "pages")
		fmt.Fprintf(p.w, "分页: pages=%d (%s)\n", p.total, formatShortDuration(dur))
		// 只有一页时首抓已经完成，keepalive 没有存在空间。
		if p.total > 1 && !p.tickerStarted {
			p.startTickerLocked()
		}
	case "export":
		fmt.Fprintf(p.w, "导出: movies=%d file=%s (%s)\n",
			intField(fields, "movies"), strField(fields, "file"), formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPageDone(page, total int, res domain.PageResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// page/total 由 run 层给出；这里同时维护自己的计数，供 keepalive 使用。
	p.done = page
	if total > 0 {
		p.total = total
	}
	p.movies += res.Movies

	switch res.Status {
	case domain.PageStatusFailed:
		if total > 0 {
			fmt.Fprintf(p.w, "Fetched page %d/%d FAIL %s: %s (%s)\n",
				page, total, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
			)
		} else {
			// 第 1 页失败：总页数尚未确定。
			fmt.Fprintf(p.w, "Fetched page %d FAIL %s: %s (%s)\n",
				page, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
			)
		}
	default:
		fmt.Fprintf(p.w, "Fetched page %d/%d (movies=%d) (%s)\n",
			page, total, res.Movies, formatShortDuration(dur),
		)
	}

	p.lastPrinted = time.Now()

	// 最后一页完成或任一页失败（失败会立即终止运行）：停止 ticker，
	// 避免在结束打印后又冒出 keepalive。
	if p.tickerStarted && (p.done >= p.total || res.Status == domain.PageStatusFailed) {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) OnProgress(done, total, movies int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "进度: pages=%d/%d movies=%d elapsed=%s\n",
		done, total, movies, formatElapsed(elapsed),
	)
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				// 已完成：安全退出（OnPageDone 会 close stopCh，但这里也做兜底）。
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}

				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					elapsed := time.Since(p.startedAt)
					fmt.Fprintf(p.w, "进度: pages=%d/%d movies=%d elapsed=%s\n",
						p.done, p.total, p.movies, formatElapsed(elapsed),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-p.stopCh:
				return
			}
		}
	}()
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}

func strField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
