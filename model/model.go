// Package model 实现打分模型：用户嵌入 × 游戏嵌入 × 内容特征向量 → 全连接网络 → sigmoid。
//
// 拓扑固定（不做结构搜索）：
//
//	user-index  → embedding(32) ─┐
//	game-index  → embedding(32) ─┼→ concat(128) → dense(128, relu) → dropout(0.3)
//	features    → dense(64, relu)┘            → dense(64, relu)  → dropout(0.3)
//	                                          → dense(32, relu)  → dense(1, sigmoid)
//
// 损失为带样本权重的二元交叉熵，优化器 Adam。训练是离线单线程批处理；
// 推理只读，同一个 Network 可被多个请求并发打分。
package model

// Scorer 是打分阶段的最小抽象：输入 (用户下标, 游戏下标, 内容特征)，
// 输出 [0,1] 的交互可能性，直接用作推荐分数。
type Scorer interface {
	Name() string
	Score(userIdx, gameIdx int, features []float64) (float64, error)
}

// Example 是一条训练样本。下标已经过稠密索引映射，Features 长度
// 必须与网络的 FeatureSize 一致。
type Example struct {
	UserIdx  int
	GameIdx  int
	Features []float64
	Label    float64 // 1 正样本 / 0 负样本
	Weight   float64 // 样本权重（行为强度），<=0 按 1 处理
}
