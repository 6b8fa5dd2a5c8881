// Package snapshot 把抓取到的每页原始 HTML 落盘存档。
package snapshot

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/BOXD/internal/infra/fsx"
)

// Store 提供 <Root>/<name>/ 下的页面快照写入。
//
// 约束：
// - 只写不读：快照是排查与留档用的副产品，任何流程都不依赖它
// - 写入失败不中断抓取（调用方记日志后继续）
type Store struct {
	Root string
}

func New(root string) Store {
	return Store{Root: filepath.Clean(strings.TrimSpace(root))}
}

// PagePath 返回第 page 页快照的路径。
func (s Store) PagePath(name string, page int) (string, error) {
	n, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if page < 1 {
		return "", fmt.Errorf("页码必须从 1 开始：%d", page)
	}
	return filepath.Join(s.Root, n, pageFileName(page)), nil
}

// WritePage 原子写入第 page 页的原始 HTML（同名覆盖）。
func (s Store) WritePage(name string, page int, html []byte) error {
	n, err := cleanName(name)
	if err != nil {
		return err
	}
	if page < 1 {
		return fmt.Errorf("页码必须从 1 开始：%d", page)
	}
	dir := filepath.Join(s.Root, n)
	return fsx.WriteFileAtomicReplace(dir, pageFileName(page), html)
}

func pageFileName(page int) string { return fmt.Sprintf("page-%04d.html", page) }

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("快照名不能为空")
	}
	// 最小约束：避免路径穿越；名称来自输出名（slug 拼接），这里不做更多“聪明”处理。
	if !nameRE.MatchString(name) {
		return "", fmt.Errorf("非法快照名：%q", name)
	}
	return name, nil
}
