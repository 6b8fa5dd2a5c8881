package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/John-Robertt/BOXD/internal/app/run"
	"github.com/John-Robertt/BOXD/internal/config"
	"github.com/John-Robertt/BOXD/internal/csvx"
	"github.com/John-Robertt/BOXD/internal/domain"
	"github.com/John-Robertt/BOXD/internal/infra/logx"
	"github.com/John-Robertt/BOXD/internal/infra/snapshot"
	"github.com/John-Robertt/BOXD/internal/letterboxd"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "export":
		if code := exportCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func exportCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printExportUsage()
			return 0
		}
	}

	ea, err := parseExportArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printExportUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		OutDir:     ea.OutDir,
		OutDirSet:  ea.OutDirSet,
		ConfigPath: ea.ConfigPath,
		ConfigSet:  ea.ConfigSet,
	})
	if err != nil {
		rr := reportForConfigError(ea.URL, err)
		emitReport(rr)
		return 1
	}

	log, logCloser := logx.New(eff.LogFile, eff.LogMaxSizeMB, eff.LogMaxBackups)
	defer logCloser.Close()

	var snap *snapshot.Store
	if eff.SnapshotDir != "" {
		s := snapshot.New(eff.SnapshotDir)
		snap = &s
	}

	deps := run.Deps{
		Fetcher:  letterboxd.Site{},
		Exporter: csvx.FileExporter{Dir: eff.OutDir},
		Snap:     snap,
		Log:      log,
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.ExecuteWithObserver(context.Background(), eff, ea.URL, deps, obs)

	emitReport(rr)
	if rr.Status == domain.StatusExported {
		return 0
	}
	return 1
}

type exportArgs struct {
	URL        string
	OutDir     string
	OutDirSet  bool
	ConfigPath string
	ConfigSet  bool
}

func parseExportArgs(args []string) (exportArgs, error) {
	ea := exportArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--out":
			if i+1 >= len(args) {
				return exportArgs{}, fmt.Errorf("--out 需要一个值")
			}
			i++
			ea.OutDir = args[i]
			ea.OutDirSet = true
		case strings.HasPrefix(a, "--out="):
			ea.OutDir = strings.TrimPrefix(a, "--out=")
			ea.OutDirSet = true
		case a == "--config":
			if i+1 >= len(args) {
				return exportArgs{}, fmt.Errorf("--config 需要一个值")
			}
			i++
			ea.ConfigPath = args[i]
			ea.ConfigSet = true
		case strings.HasPrefix(a, "--config="):
			ea.ConfigPath = strings.TrimPrefix(a, "--config=")
			ea.ConfigSet = true
		case strings.HasPrefix(a, "-"):
			return exportArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ea.URL != "" {
				return exportArgs{}, fmt.Errorf("重复的 url：%q 与 %q", ea.URL, a)
			}
			ea.URL = a
		}
	}

	if ea.URL == "" {
		return exportArgs{}, fmt.Errorf("缺少列表 url")
	}

	return ea, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  boxd export <url> [--out 目录] [--config 文件]

命令：
  export    抓取 Letterboxd 列表并导出 CSV

使用 "boxd export --help" 查看详细说明。
`)
}

func printExportUsage() {
	fmt.Fprint(os.Stdout, `用法：
  boxd export <url> [--out 目录] [--config 文件]

参数：
  url         列表或 watchlist 地址（例如 https://letterboxd.com/bob/watchlist/）
  --out       CSV 输出目录（覆盖配置中的 out_dir；默认当前目录）
  --config    配置文件路径（未指定时尝试读取当前目录的 boxd.json）
  -h, --help  显示帮助
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		if rr.Status == domain.StatusExported {
			fmt.Fprintf(os.Stdout, "Exported %d movies to %s\n", rr.Summary.Movies, rr.OutputFile)
			return
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", rr.ErrorCode, rr.ErrorMsg)
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（进度/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	if rr.Status == domain.StatusExported {
		fmt.Fprintf(os.Stderr, "完成：pages=%d/%d movies=%d file=%s\n",
			rr.Summary.PagesFetched, rr.Summary.PagesTotal, rr.Summary.Movies, rr.OutputFile,
		)
		return
	}
	fmt.Fprintf(os.Stderr, "失败：%s: %s\n", rr.ErrorCode, rr.ErrorMsg)
}

func reportForConfigError(rawURL string, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		URL:        strings.TrimSpace(rawURL),
		Filters:    []string{},
		Pages:      []domain.PageResult{},
		StartedAt:  now,
		FinishedAt: now,
		Status:     domain.StatusFailed,
		ErrorCode:  config.Code(err),
		ErrorMsg:   err.Error(),
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
