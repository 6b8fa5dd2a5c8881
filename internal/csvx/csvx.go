// Package csvx 把条目序列编码为 CSV 并写出导出文件。
package csvx

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/BOXD/internal/domain"
	"github.com/John-Robertt/BOXD/internal/infra/fsx"
)

// 列顺序与 Entry 字段一一对应；首行固定为表头。
var header = []string{"year", "title", "url"}

// Encode 把条目序列编码为 UTF-8 CSV。
//
// 规则：
// - 首行恒为 year,title,url；0 条记录时输出只含表头
// - 行序与输入一致；空字段原样输出为空
// - 引号与转义交给 encoding/csv（含逗号/引号/换行的字段会被引用）
func Encode(entries []domain.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Year, e.Title, e.URL}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExporter 把编码结果原子写入 Dir 下的 <name>.csv。
type FileExporter struct {
	Dir string
}

// Export 写出导出文件并返回最终路径；同名文件会被整体替换。
func (x FileExporter) Export(name string, entries []domain.Entry) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("导出文件名不能为空")
	}
	b, err := Encode(entries)
	if err != nil {
		return "", err
	}
	dir := x.Dir
	if dir == "" {
		dir = "."
	}
	file := name + ".csv"
	if err := fsx.WriteFileAtomicReplace(dir, file, b); err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}
