package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusExported = "exported"
	StatusFailed   = "failed"
)

const (
	PageStatusFetched = "fetched"
	PageStatusFailed  = "failed"
)

const (
	ErrCodeInvalidURL     = "invalid_url"
	ErrCodeFetchFailed    = "fetch_failed"
	ErrCodeExportFailed   = "export_failed"
	ErrCodeConfigNotFound = "config_not_found"
	ErrCodeConfigInvalid  = "config_invalid"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	URL string `json:"url"`

	Owner      string   `json:"owner"`
	Mode       string   `json:"mode"`
	Collection string   `json:"collection"`
	Filters    []string `json:"filters"`

	OutputName string `json:"output_name"`
	OutputFile string `json:"output_file"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Pages   []PageResult  `json:"pages"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

type ReportSummary struct {
	PagesTotal   int `json:"pages_total"`
	PagesFetched int `json:"pages_fetched"`
	Movies       int `json:"movies"`
}

// PageResult 记录一页的抓取/解析结果（页序即聚合序）。
type PageResult struct {
	Page   int    `json:"page"`
	URL    string `json:"url"`
	Movies int    `json:"movies"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) pages 按页号稳定排序（不依赖 append 顺序）
// 3) summary 的 pages_fetched/movies 由 pages 计算得出（movies 只统计成功页）
//
// pages_total 是分页解析出的总页数，由执行层写入；失败中断时 pages 不完整，
// 因此不能用 len(pages) 反推。仅当执行层没走到分页阶段时回退为 len(pages)。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Pages, func(i, j int) bool {
		return r.Pages[i].Page < r.Pages[j].Page
	})

	s := ReportSummary{PagesTotal: r.Summary.PagesTotal}
	if s.PagesTotal == 0 {
		s.PagesTotal = len(r.Pages)
	}
	for _, p := range r.Pages {
		if p.Status == PageStatusFetched {
			s.PagesFetched++
			s.Movies += p.Movies
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
