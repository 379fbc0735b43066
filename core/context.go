package core

import "github.com/rushteam/gamerec/pkg/utils"

// RecommendContext 承载用户/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 使用 string 类型（通用，支持所有 ID 格式）
	Scene  string

	// Profile 是用户交互画像；冷启动场景下可能为 nil 或空画像
	Profile *UserProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：冷启动用户、重度用户等
	Labels map[string]utils.Label

	// Params 请求级上下文参数，如 top_n、scene 维度的开关等
	Params map[string]any
}

// GetProfile 获取用户交互画像；未注入时返回空画像而不是 nil，
// 下游节点可以直接调用 HasInteracted 而不必判空。
func (rctx *RecommendContext) GetProfile() *UserProfile {
	if rctx.Profile != nil {
		return rctx.Profile
	}
	return NewUserProfile(rctx.UserID)
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
