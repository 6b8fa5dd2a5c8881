package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		URL:        "https://letterboxd.com/alice/watchlist/",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Pages: []PageResult{
			{Page: 2, Status: PageStatusFetched, Movies: 3},
			{Page: 3, Status: PageStatusFailed, ErrorCode: ErrCodeFetchFailed},
			{Page: 1, Status: PageStatusFetched, Movies: 28},
		},
	}

	r.Finalize()

	// pages 必须按页号升序（聚合序即页序）。
	if r.Pages[0].Page != 1 || r.Pages[1].Page != 2 || r.Pages[2].Page != 3 {
		t.Fatalf("pages 排序不符合契约：%v", []int{r.Pages[0].Page, r.Pages[1].Page, r.Pages[2].Page})
	}
	if r.Summary.PagesTotal != 3 || r.Summary.PagesFetched != 2 || r.Summary.Movies != 31 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	if len(b) == 0 || !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_Finalize_KeepsResolvedPagesTotal(t *testing.T) {
	r := RunReport{
		Summary: ReportSummary{PagesTotal: 3},
		Pages: []PageResult{
			{Page: 1, Status: PageStatusFetched, Movies: 28},
			{Page: 2, Status: PageStatusFailed, ErrorCode: ErrCodeFetchFailed},
		},
	}

	r.Finalize()

	// 第 3 页因为中断没被尝试：总页数仍然是分页解析出的 3。
	if r.Summary.PagesTotal != 3 {
		t.Fatalf("期望 pages_total=3，实际 %d", r.Summary.PagesTotal)
	}
	if r.Summary.PagesFetched != 1 || r.Summary.Movies != 28 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}
}
