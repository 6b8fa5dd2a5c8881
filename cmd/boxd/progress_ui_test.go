package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/BOXD/internal/config"
	"github.com/John-Robertt/BOXD/internal/domain"
)

func TestProgressUI_PageLines(t *testing.T) {
	var buf bytes.Buffer
	ui := newProgressUI(&buf)
	// 测试不触发 keepalive。
	ui.tickerInterval = time.Hour

	ui.OnStart(config.EffectiveConfig{OutDir: "exports"}, "https://letterboxd.com/alice/watchlist/")
	ui.OnResolved(domain.ListingIdentity{Owner: "alice", Mode: domain.ModeWatchlist})
	ui.OnPhaseDone("paginate", map[string]any{"pages": 2}, 120*time.Millisecond)
	ui.OnPageDone(1, 2, domain.PageResult{Page: 1, Movies: 72, Status: domain.PageStatusFetched}, 120*time.Millisecond)
	ui.OnPageDone(2, 2, domain.PageResult{Page: 2, Movies: 3, Status: domain.PageStatusFetched}, 80*time.Millisecond)
	ui.OnPhaseDone("export", map[string]any{"movies": 75, "file": "exports/alice_watchlist.csv"}, 10*time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"owner=alice mode=watchlist",
		"输出: alice_watchlist.csv",
		"分页: pages=2 (0.1s)",
		"Fetched page 1/2 (movies=72) (0.1s)",
		"Fetched page 2/2 (movies=3) (0.1s)",
		"导出: movies=75 file=exports/alice_watchlist.csv",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("进度输出缺少 %q：\n%s", want, out)
		}
	}
	if ui.tickerStarted {
		t.Fatalf("最后一页完成后 ticker 应已停止")
	}
}

func TestProgressUI_FailedPageStopsTicker(t *testing.T) {
	var buf bytes.Buffer
	ui := newProgressUI(&buf)
	ui.tickerInterval = time.Hour

	ui.OnPhaseDone("paginate", map[string]any{"pages": 3}, 0)
	ui.OnPageDone(1, 3, domain.PageResult{Page: 1, Movies: 72, Status: domain.PageStatusFetched}, 0)
	ui.OnPageDone(2, 3, domain.PageResult{
		Page:      2,
		Status:    domain.PageStatusFailed,
		ErrorCode: domain.ErrCodeFetchFailed,
		ErrorMsg:  "站点返回 HTTP 500：https://letterboxd.com/alice/watchlist/page/2/",
	}, 0)

	out := buf.String()
	if !strings.Contains(out, "Fetched page 2/3 FAIL fetch_failed:") {
		t.Fatalf("缺少失败页输出：\n%s", out)
	}
	if ui.tickerStarted {
		t.Fatalf("页面失败后 ticker 应已停止")
	}
}

func TestProgressUI_FirstPageFailWithoutTotal(t *testing.T) {
	var buf bytes.Buffer
	ui := newProgressUI(&buf)

	// 第 1 页失败时 run 层还不知道总页数，total 为 0。
	ui.OnPageDone(1, 0, domain.PageResult{
		Page:      1,
		Status:    domain.PageStatusFailed,
		ErrorCode: domain.ErrCodeFetchFailed,
		ErrorMsg:  "站点返回 HTTP 404（列表不存在、已删除或不公开）：https://letterboxd.com/alice/watchlist/",
	}, 0)

	out := buf.String()
	if !strings.Contains(out, "Fetched page 1 FAIL fetch_failed:") {
		t.Fatalf("缺少首抓失败输出：\n%s", out)
	}
	if strings.Contains(out, "1/0") {
		t.Fatalf("总页数未知时不应输出 1/0：\n%s", out)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatShortDuration(1234 * time.Millisecond); got != "1.2s" {
		t.Fatalf("formatShortDuration=%q", got)
	}
	if got := formatElapsed(3*time.Hour + 4*time.Minute + 5*time.Second); got != "03:04:05" {
		t.Fatalf("formatElapsed=%q", got)
	}
	if got := formatProxy(""); got != "off" {
		t.Fatalf("formatProxy(\"\")=%q", got)
	}
	if got := formatProxy("http://user:pw@127.0.0.1:7890"); got != "on (http://127.0.0.1:7890, auth=on)" {
		t.Fatalf("formatProxy=%q", got)
	}
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncate=%q", got)
	}
}
