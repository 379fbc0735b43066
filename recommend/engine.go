package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/index"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/rank"
	"github.com/rushteam/gamerec/recall"
	"github.com/rushteam/gamerec/rerank"
)

// 结果集的状态说明文案。
const (
	MessagePersonalized      = "Personalized recommendations based on your activity"
	MessageColdStartNewUser  = "No activity yet - showing popular games"
	MessageColdStartFallback = "Personalized scoring unavailable - showing popular games"
	MessageColdStartEmpty    = "No personalized candidates - showing popular games"
)

// Engine 是推荐引擎：对一个用户的单次生成请求给出完整结果集。
//
// 状态机：
//
//	无交互            → 冷启动（人气兜底）
//	有交互 → 尝试模型 → 成功且非空 → 个性化
//	                  → 产出为空   → 冷启动
//	                  → 失败       → 冷启动
//
// 推荐是软功能：个性化链路的任何失败（产物缺失、用户未知、打分出错）
// 都降级为冷启动而不向调用方抛错。单次调用内不重试，每次调用都基于
// 当前数据重新评估。
type Engine struct {
	Provider core.DataProvider
	Handle   *Handle

	// Store 推荐结果的持久化后端；为 nil 时只返回不落库
	Store core.Store

	// Hooks 挂到个性化链路的 Pipeline 上（观测、反馈采集）
	Hooks []pipeline.Hook

	cfg core.EngineConfig
	log zerolog.Logger
}

// NewEngine 创建引擎。cfg 中的零值字段会被默认值填补。
func NewEngine(provider core.DataProvider, handle *Handle, store core.Store, cfg core.EngineConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		Provider: provider,
		Handle:   handle,
		Store:    store,
		cfg:      cfg.Sanitized(),
		log:      logger,
	}
}

// Generate 为用户生成一份完整的推荐结果集并落库（整体替换旧结果）。
//
// 返回值约定：结果集与错误可以同时非空——落库失败时返回有效结果集
// 加 PERSISTENCE_FAILURE 错误，调用方可以照常使用结果，由运维处理存储告警。
// 其余错误（目录不可用等）结果集为 nil。
func (e *Engine) Generate(ctx context.Context, userID string) (*core.RecommendationSet, error) {
	games, err := e.Provider.GetGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommend: load catalog: %w", err)
	}

	interactions, err := e.Provider.GetUserInteractions(ctx, userID)
	if err != nil && !core.IsNotFound(err) {
		return nil, fmt.Errorf("recommend: load interactions for %s: %w", userID, err)
	}
	profile := core.BuildUserProfile(userID, interactions, games)

	set := e.generate(ctx, userID, profile, games)
	set.GeneratedAt = time.Now().UTC()

	if err := e.persist(ctx, set); err != nil {
		// 落库失败不否定结果本身，错误与有效结果一起返回
		e.log.Error().Err(err).Str("user_id", userID).Msg("recommendation persist failed")
		return set, err
	}
	return set, nil
}

func (e *Engine) generate(ctx context.Context, userID string, profile *core.UserProfile, games []*core.Game) *core.RecommendationSet {
	if !profile.HasInteractions() {
		return e.coldStart(userID, games, MessageColdStartNewUser)
	}

	recs, err := e.personalized(ctx, userID, profile, games)
	switch {
	case err != nil:
		e.log.Warn().Err(err).Str("user_id", userID).Msg("personalized scoring failed, falling back to popularity")
		return e.coldStart(userID, games, MessageColdStartFallback)
	case len(recs) == 0:
		return e.coldStart(userID, games, MessageColdStartEmpty)
	default:
		e.log.Info().Str("user_id", userID).Int("count", len(recs)).Msg("personalized recommendations generated")
		return &core.RecommendationSet{
			UserID:          userID,
			Recommendations: recs,
			IsColdStart:     false,
			Message:         MessagePersonalized,
		}
	}
}

func (e *Engine) coldStart(userID string, games []*core.Game, message string) *core.RecommendationSet {
	return &core.RecommendationSet{
		UserID:          userID,
		Recommendations: PopularityRank(games, e.cfg.TopN),
		IsColdStart:     true,
		Message:         message,
	}
}

// personalized 执行个性化链路：
// recall.catalog → filter.interacted → rank.model → rerank.topn → reason。
func (e *Engine) personalized(ctx context.Context, userID string, profile *core.UserProfile, games []*core.Game) ([]core.Recommendation, error) {
	if e.Handle == nil {
		return nil, artifactUnavailable("no model handle configured")
	}
	if err := e.Handle.Load(ctx); err != nil {
		return nil, err
	}
	meta := e.Handle.Metadata()

	userIdx, ok := meta.UserIndexOf(userID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeUnknownUser,
			fmt.Sprintf("recommend: user %q not in trained index", userID))
	}

	gameIndex, err := meta.GameIndex()
	if err != nil {
		return nil, artifactUnavailable(fmt.Sprintf("restore game index: %v", err))
	}
	resolver := index.ResolverForGames(games)

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Catalog{Games: games},
			&filter.FilterNode{Filters: []filter.Filter{
				&filter.InteractedFilter{Resolver: resolver},
			}},
			&rank.ModelNode{
				Scorer:   e.Handle.Scorer(),
				Vocab:    meta.Vocabulary(),
				Games:    gameIndex,
				Resolver: resolver,
				UserIdx:  userIdx,
				Parallel: e.cfg.ScoreParallel,
			},
			&rerank.TopNNode{N: e.cfg.TopN},
			&ReasonNode{},
		},
		Hooks: e.Hooks,
	}

	rctx := &core.RecommendContext{UserID: userID, Profile: profile}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeScoringFailure,
			fmt.Sprintf("recommend: pipeline: %v", err))
	}
	return toRecommendations(items), nil
}

func toRecommendations(items []*core.Item) []core.Recommendation {
	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		reason := core.ReasonPreferences
		if lbl, ok := it.Labels["reason"]; ok && lbl.Value != "" {
			reason = lbl.Value
		}
		out = append(out, core.Recommendation{
			GameID: it.ID,
			Score:  it.Score,
			Reason: reason,
		})
	}
	return out
}

// persist 把结果集整体写入 Store（JSON），key 为 {prefix}:{userID}。
func (e *Engine) persist(ctx context.Context, set *core.RecommendationSet) error {
	if e.Store == nil {
		return nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodePersistenceFailure,
			fmt.Sprintf("recommend: marshal result set: %v", err))
	}
	key := e.resultKey(set.UserID)
	var setErr error
	if e.cfg.ResultTTL > 0 {
		setErr = e.Store.Set(ctx, key, data, int(e.cfg.ResultTTL/time.Second))
	} else {
		setErr = e.Store.Set(ctx, key, data)
	}
	if setErr != nil {
		return core.NewDomainError(core.ModuleRecommend, core.ErrorCodePersistenceFailure,
			fmt.Sprintf("recommend: store result set at %q: %v", key, setErr))
	}
	return nil
}

// LoadStored 读取用户最近一次落库的结果集；从未生成过返回 NOT_FOUND。
func (e *Engine) LoadStored(ctx context.Context, userID string) (*core.RecommendationSet, error) {
	if e.Store == nil {
		return nil, core.ErrStoreNotFound
	}
	data, err := e.Store.Get(ctx, e.resultKey(userID))
	if err != nil {
		return nil, err
	}
	var set core.RecommendationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("recommend: parse stored result set: %w", err)
	}
	return &set, nil
}

func (e *Engine) resultKey(userID string) string {
	return e.cfg.ResultKeyPrefix + ":" + userID
}
