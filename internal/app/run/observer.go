package run

import (
	"time"

	"github.com/John-Robertt/BOXD/internal/config"
	"github.com/John-Robertt/BOXD/internal/domain"
)

// Observer 用于把“运行进度/阶段/每页结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 抓取本身是串行的，但 OnProgress 可能由 CLI 的 keepalive ticker 并发触发，
//   实现仍需并发安全。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig, rawURL string)
	// OnResolved 在 URL 解析出列表身份后调用。
	OnResolved(id domain.ListingIdentity)
	// OnPhaseDone 在阶段结束/就绪时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnPageDone 在某一页抓取完成（或失败）时调用（用于每页结果的一行输出）。
	OnPageDone(page, total int, res domain.PageResult, dur time.Duration)
	// OnProgress 用于 keepalive（通常由 CLI 自己 ticker 触发；run 层不强制调用）。
	OnProgress(done, total, movies int, elapsed time.Duration)
}
