package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ErrCodeNotFound 表示 --config 指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultOutDir 是导出目录的内置默认值。
	DefaultOutDir = "."
	// DefaultLogMaxSizeMB / DefaultLogMaxBackups 是日志滚动的内置默认值。
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
)

// CLIArgs 只包含 CLI 暴露的两项入口（--out/--config），并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --out . 必须能覆盖 config.out_dir。
type CLIArgs struct {
	OutDir    string
	OutDirSet bool

	ConfigPath string
	ConfigSet  bool
}

// FileConfig 对应 boxd.json 的解析结构。
type FileConfig struct {
	OutDir   string          `json:"out_dir"`
	Proxy    *ProxyConfig    `json:"proxy"`
	Log      *LogConfig      `json:"log"`
	Snapshot *SnapshotConfig `json:"snapshot"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// LogConfig 的数值字段用指针区分“未配置”（用默认值）与“显式 0”。
type LogConfig struct {
	File       string `json:"file"`
	MaxSizeMB  *int   `json:"max_size_mb"`
	MaxBackups *int   `json:"max_backups"`
}

type SnapshotConfig struct {
	Dir string `json:"dir"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	OutDir string

	ProxyURL string

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	SnapshotDir string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 按固定规则发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：该文件必须存在且可解析
// 2) CLI 未提供 --config：尝试读取 <cwd>/boxd.json（可选；不存在则全用默认值）
//
// 覆盖优先级（固定）：
// - out_dir：CLI --out > config out_dir > 默认 "."
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
	)
	if cli.ConfigSet && strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		var exists bool
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		// 未显式指定：<cwd>/boxd.json 可选，不存在不算错误。
		cfgPath = filepath.Join(cwdAbs, "boxd.json")
		fc, _, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	return merge(cli, fc, cfgPath)
}

func merge(cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// out_dir：CLI > config > 默认
	outDir := DefaultOutDir
	if cli.OutDirSet {
		outDir = strings.TrimSpace(cli.OutDir)
	} else if strings.TrimSpace(fc.OutDir) != "" {
		outDir = strings.TrimSpace(fc.OutDir)
	}
	if outDir == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("out_dir 不能为空")}
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%w", err)}
		}
	}

	logFile := ""
	logMaxSizeMB := DefaultLogMaxSizeMB
	logMaxBackups := DefaultLogMaxBackups
	if fc.Log != nil {
		logFile = strings.TrimSpace(fc.Log.File)
		if fc.Log.MaxSizeMB != nil {
			logMaxSizeMB = *fc.Log.MaxSizeMB
		}
		if fc.Log.MaxBackups != nil {
			logMaxBackups = *fc.Log.MaxBackups
		}
	}
	if logMaxSizeMB < 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("log.max_size_mb 不能为负数：%d", logMaxSizeMB)}
	}
	if logMaxBackups < 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("log.max_backups 不能为负数：%d", logMaxBackups)}
	}

	snapshotDir := ""
	if fc.Snapshot != nil {
		snapshotDir = strings.TrimSpace(fc.Snapshot.Dir)
	}

	return EffectiveConfig{
		OutDir:        outDir,
		ProxyURL:      proxyURL,
		LogFile:       logFile,
		LogMaxSizeMB:  logMaxSizeMB,
		LogMaxBackups: logMaxBackups,
		SnapshotDir:   snapshotDir,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
