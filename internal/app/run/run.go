package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/John-Robertt/BOXD/internal/config"
	"github.com/John-Robertt/BOXD/internal/domain"
	"github.com/John-Robertt/BOXD/internal/infra/httpx"
	"github.com/John-Robertt/BOXD/internal/infra/logx"
	"github.com/John-Robertt/BOXD/internal/infra/snapshot"
	"github.com/John-Robertt/BOXD/internal/letterboxd"
	"github.com/John-Robertt/BOXD/internal/listing"
)

// Fetcher 抓取单个列表页（生产实现是 letterboxd.Site）。
type Fetcher interface {
	FetchPage(ctx context.Context, c *http.Client, pageURL string) (letterboxd.Page, error)
}

// Exporter 把聚合完成的条目序列写成导出文件（生产实现是 csvx.FileExporter）。
type Exporter interface {
	Export(name string, entries []domain.Entry) (string, error)
}

// Deps 汇集 run 的外部依赖，便于测试替换。
type Deps struct {
	Fetcher  Fetcher
	Exporter Exporter
	Snap     *snapshot.Store // nil 表示不落快照
	Log      *slog.Logger    // nil 表示不记日志
}

// Execute 执行一次导出，并返回对外稳定的 RunReport。
func Execute(ctx context.Context, eff config.EffectiveConfig, rawURL string, deps Deps) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, rawURL, deps, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出进度（由上层决定是否启用）。
//
// 执行顺序（固定）：
// 1) 解析 URL → 列表身份（不碰网络）
// 2) 抓第 1 页 → 得到总页数 N
// 3) 依次抓第 1..N 页并按文档顺序累加条目（第 1 页不重复抓取）
// 4) 全部页成功后才写导出文件；任何一页失败立即终止，不产出部分结果
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, rawURL string, deps Deps, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff, rawURL)
	}

	log := deps.Log
	if log == nil {
		log = logx.Nop()
	}
	log.Info("运行开始", "url", rawURL, "out_dir", eff.OutDir)

	rr := domain.RunReport{
		URL:       rawURL,
		StartedAt: started,
		Filters:   []string{},
		Pages:     make([]domain.PageResult, 0, 4),
	}

	id, err := listing.Extract(rawURL)
	if err != nil {
		log.Error("url 解析失败", "url", rawURL, "err", err)
		rr.Status = domain.StatusFailed
		rr.ErrorCode = domain.ErrCodeInvalidURL
		rr.ErrorMsg = err.Error()
		return finishReport(&rr)
	}

	rr.Owner = id.Owner
	rr.Mode = string(id.Mode)
	rr.Collection = id.Collection
	rr.Filters = append(rr.Filters, id.Filters...)
	rr.OutputName = id.OutputName()

	if obs != nil {
		obs.OnResolved(id)
	}
	log.Info("列表身份解析完成",
		"owner", id.Owner, "mode", string(id.Mode),
		"collection", id.Collection, "filters", id.Filters,
		"output_name", rr.OutputName)

	client, err := httpx.New(eff.ProxyURL)
	if err != nil {
		log.Error("http client 构造失败", "proxy", eff.ProxyURL, "err", err)
		rr.Status = domain.StatusFailed
		rr.ErrorCode = domain.ErrCodeConfigInvalid
		rr.ErrorMsg = fmt.Sprintf("proxy.url 无效：%v", err)
		return finishReport(&rr)
	}

	// 第 1 页：既是数据页，也是总页数的唯一来源。
	firstPage, firstDur, err := fetchPage(ctx, deps, log, client, id, 1)
	if err != nil {
		res := failedPage(1, id.PageURL(1), err)
		rr.Pages = append(rr.Pages, res)
		if obs != nil {
			obs.OnPageDone(1, 0, res, firstDur)
		}
		rr.Status = domain.StatusFailed
		rr.ErrorCode = domain.ErrCodeFetchFailed
		rr.ErrorMsg = fmt.Sprintf("第 1 页抓取失败：%s", res.ErrorMsg)
		return finishReport(&rr)
	}

	total := firstPage.PageCount()
	rr.Summary.PagesTotal = total
	if obs != nil {
		obs.OnPhaseDone("paginate", map[string]any{"pages": total}, firstDur)
	}
	log.Info("总页数确定", "pages", total)

	entries := make([]domain.Entry, 0, 64)
	for k := 1; k <= total; k++ {
		page := firstPage
		dur := firstDur
		if k > 1 {
			page, dur, err = fetchPage(ctx, deps, log, client, id, k)
			if err != nil {
				res := failedPage(k, id.PageURL(k), err)
				rr.Pages = append(rr.Pages, res)
				if obs != nil {
					obs.OnPageDone(k, total, res, dur)
				}
				rr.Status = domain.StatusFailed
				rr.ErrorCode = domain.ErrCodeFetchFailed
				rr.ErrorMsg = fmt.Sprintf("第 %d/%d 页抓取失败：%s", k, total, res.ErrorMsg)
				return finishReport(&rr)
			}
		}

		pageEntries := page.Entries()
		entries = append(entries, pageEntries...)
		res := domain.PageResult{
			Page:   k,
			URL:    id.PageURL(k),
			Movies: len(pageEntries),
			Status: domain.PageStatusFetched,
		}
		rr.Pages = append(rr.Pages, res)
		if obs != nil {
			obs.OnPageDone(k, total, res, dur)
		}
	}

	exportStarted := time.Now()
	path, err := deps.Exporter.Export(rr.OutputName, entries)
	if err != nil {
		log.Error("导出失败", "name", rr.OutputName, "err", err)
		rr.Status = domain.StatusFailed
		rr.ErrorCode = domain.ErrCodeExportFailed
		rr.ErrorMsg = fmt.Sprintf("导出失败：%v", err)
		return finishReport(&rr)
	}

	rr.OutputFile = path
	rr.Status = domain.StatusExported
	if obs != nil {
		obs.OnPhaseDone("export", map[string]any{
			"movies": len(entries),
			"file":   path,
		}, time.Since(exportStarted))
	}
	log.Info("导出完成", "file", path, "movies", len(entries))
	return finishReport(&rr)
}

// fetchPage 抓取第 page 页，并顺带把原始 HTML 写入快照（best-effort）。
func fetchPage(ctx context.Context, deps Deps, log *slog.Logger, client *http.Client, id domain.ListingIdentity, page int) (letterboxd.Page, time.Duration, error) {
	pageURL := id.PageURL(page)
	st := time.Now()
	p, err := deps.Fetcher.FetchPage(ctx, client, pageURL)
	dur := time.Since(st)
	if err != nil {
		log.Error("页面抓取失败", "page", page, "url", pageURL, "err", err)
		return letterboxd.Page{}, dur, err
	}
	log.Info("页面抓取完成", "page", page, "url", pageURL, "bytes", len(p.Raw()), "dur", dur.String())

	if deps.Snap != nil {
		if err := deps.Snap.WritePage(id.OutputName(), page, p.Raw()); err != nil {
			// 快照是副产品：失败只记日志，不影响抓取。
			log.Warn("快照写入失败", "page", page, "err", err)
		}
	}
	return p, dur, nil
}

func failedPage(page int, pageURL string, err error) domain.PageResult {
	return domain.PageResult{
		Page:      page,
		URL:       pageURL,
		Status:    domain.PageStatusFailed,
		ErrorCode: domain.ErrCodeFetchFailed,
		ErrorMsg:  humanizeFetchError(err),
	}
}

func finishReport(rr *domain.RunReport) domain.RunReport {
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return *rr
}

// humanizeFetchError 把抓取错误转成可操作的提示（反爬/限流/私有列表是最常见问题）。
func humanizeFetchError(err error) string {
	if err == nil {
		return "抓取失败"
	}

	var fe *letterboxd.FetchError
	if errors.As(err, &fe) && fe.StatusCode != 0 {
		switch fe.StatusCode {
		case 403, 429:
			return fmt.Sprintf("站点返回 HTTP %d（可能触发反爬/限流）。建议配置 proxy.url 或稍后重试：%s", fe.StatusCode, fe.URL)
		case 404:
			return fmt.Sprintf("站点返回 HTTP 404（列表不存在、已删除或不公开）：%s", fe.URL)
		default:
			return fmt.Sprintf("站点返回 HTTP %d：%s", fe.StatusCode, fe.URL)
		}
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("抓取超时。建议检查网络/代理后重试：%v", err)
	}
	if strings.Contains(low, "tls") || strings.Contains(low, "handshake") || strings.Contains(low, "ssl") {
		return fmt.Sprintf("连接失败（TLS/SSL）。建议配置 proxy.url 或稍后重试：%v", err)
	}
	return fmt.Sprintf("抓取失败：%v", err)
}
