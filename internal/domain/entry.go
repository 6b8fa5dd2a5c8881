package domain

// Entry 是从列表页解析出的一条影片引用（与导出 CSV 的列一一对应）。
//
// 约束：
// - 字段缺失用空串表示，不允许因为缺字段而丢弃整条记录
// - 构造之后不再修改；聚合序列是唯一的可变累加器（append-only）
type Entry struct {
	Year  string `json:"year"`  // 4 位数字文本；无法判定时为空
	Title string `json:"title"` // 海报 alt 文本（去掉 "Poster for " 前缀）
	URL   string `json:"url"`   // 绝对详情页地址；卡片无链接时为空
}
