// Package gamerec 是一个游戏推荐引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
// - 训练/推理分离: 离线训练产出 (权重, 元数据) 产物，服务进程惰性加载后打分
// - 冷启动兜底: 个性化不可用时统一降级为人气排名，推荐永远给得出结果
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 反馈采集
package gamerec

import "github.com/rushteam/gamerec/pipeline"

// 轻量 facade：便于直接 import "gamerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
