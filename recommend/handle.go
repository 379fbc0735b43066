package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/model"
)

// Handle 是服务进程内的模型产物句柄：惰性加载、进程生命周期内缓存。
//
// 语义：
//   - 产物不可变：一次训练产出一份，重训产出新的一份，不做原地更新
//   - 首次加载由 singleflight 去重，并发请求只触发一次 Fetch
//   - 加载失败不缓存，后续请求可以重试
//   - Invalidate 丢弃已缓存产物，下一次请求重新加载（重训后切换用）
//
// 加载失败统一报 ARTIFACT_UNAVAILABLE，调用方据此走冷启动而不是报错。
type Handle struct {
	source ArtifactSource
	log    zerolog.Logger

	sf singleflight.Group

	mu   sync.RWMutex
	net  *model.Network
	meta *feature.Metadata
}

// NewHandle 创建句柄，不触发加载。
func NewHandle(source ArtifactSource, logger zerolog.Logger) *Handle {
	return &Handle{source: source, log: logger}
}

// Load 确保产物已加载。已加载时立即返回；并发的首次加载合并为一次。
func (h *Handle) Load(ctx context.Context) error {
	if h.IsLoaded() {
		return nil
	}
	_, err, _ := h.sf.Do("load", func() (interface{}, error) {
		if h.IsLoaded() {
			return nil, nil
		}
		return nil, h.load(ctx)
	})
	return err
}

func (h *Handle) load(ctx context.Context) error {
	if h.source == nil {
		return artifactUnavailable("no artifact source configured")
	}

	art, err := h.source.Fetch(ctx)
	if err != nil {
		h.log.Warn().Err(err).Str("source", h.source.Name()).Msg("model artifact fetch failed")
		return artifactUnavailable(fmt.Sprintf("fetch from %s: %v", h.source.Name(), err))
	}

	net, err := model.UnmarshalNetwork(art.Weights)
	if err != nil {
		h.log.Warn().Err(err).Msg("model weights parse failed")
		return artifactUnavailable(fmt.Sprintf("parse weights: %v", err))
	}
	meta, err := feature.UnmarshalMetadata(art.Metadata)
	if err != nil {
		h.log.Warn().Err(err).Msg("model metadata parse failed")
		return artifactUnavailable(fmt.Sprintf("parse metadata: %v", err))
	}

	// 权重与元数据必须来自同一次训练，任何维度不一致都拒绝加载
	if net.NumUsers != meta.NumUsers || net.NumGames != meta.NumGames || net.FeatureSize != meta.FeatureSize {
		return artifactUnavailable(fmt.Sprintf(
			"weights/metadata mismatch: weights (users=%d games=%d features=%d) metadata (users=%d games=%d features=%d)",
			net.NumUsers, net.NumGames, net.FeatureSize, meta.NumUsers, meta.NumGames, meta.FeatureSize))
	}

	h.mu.Lock()
	h.net = net
	h.meta = meta
	h.mu.Unlock()

	h.log.Info().
		Str("source", h.source.Name()).
		Int("num_users", meta.NumUsers).
		Int("num_games", meta.NumGames).
		Int("feature_size", meta.FeatureSize).
		Time("trained_at", meta.TrainedAt).
		Msg("model artifact loaded")
	return nil
}

// IsLoaded 报告产物是否已就绪。
func (h *Handle) IsLoaded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.net != nil && h.meta != nil
}

// Scorer 返回已加载的打分模型；未加载时返回 nil。
func (h *Handle) Scorer() model.Scorer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.net == nil {
		return nil
	}
	return h.net
}

// Metadata 返回已加载的特征元数据；未加载时返回 nil。
func (h *Handle) Metadata() *feature.Metadata {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.meta
}

// Invalidate 丢弃已缓存的产物，下一次 Load 重新拉取。
func (h *Handle) Invalidate() {
	h.mu.Lock()
	h.net = nil
	h.meta = nil
	h.mu.Unlock()
}

func artifactUnavailable(msg string) error {
	return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeArtifactUnavailable, "recommend: "+msg)
}
