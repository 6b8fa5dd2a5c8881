// Package logx 构造写入滚动日志文件的结构化 logger。
package logx

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New 构造按大小滚动的 JSON logger。
//
// 约束：
// - 日志只进文件，不进终端（终端留给进度与报告输出）
// - file 为空表示不落盘，等价于 Nop()
// - 返回的 Closer 负责关闭当前日志文件，进程退出前调用
func New(file string, maxSizeMB, maxBackups int) (*slog.Logger, io.Closer) {
	if file == "" {
		return Nop(), nopCloser{}
	}
	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	return slog.New(slog.NewJSONHandler(w, nil)), w
}

// Nop 返回丢弃所有输出的 logger（测试与未配置日志文件时使用）。
func Nop() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
