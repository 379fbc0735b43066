// Package dataset 把交互日志合成为带标签的训练集。
//
// 正样本来自观测到的交互（按行为强度加权），负样本通过均匀随机采样
// 未交互的 (用户, 游戏) 对合成；合成后统一洗牌再切分训练/验证集，
// 避免输入顺序带来的分区偏差。
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/index"
	"github.com/rushteam/gamerec/model"
)

// Dataset 是一次合成的产出：样本分区 + 训练期构件（下标映射、别名解析器）。
type Dataset struct {
	Train []model.Example
	Val   []model.Example

	Users    *index.Index
	Games    *index.Index
	Resolver *index.Resolver

	Positives int // 合成的正样本数（复制加权模式下含复制份数）
	Negatives int
	Dropped   int // 无法解析（用户/游戏不在映射中）而被丢弃的交互数，诊断用
}

// Synthesize 合成训练集。
//
// 流程：
//  1. 训练门槛校验：目录、交互、用户任一不足即拒绝（INSUFFICIENT_DATA）
//  2. 构建用户/游戏稠密下标（首次出现顺序）与别名解析器
//  3. 每条可解析的交互 → 正样本，权重 = 行为强度（favorite 1.5 / played 1.2 / like 1.0）
//  4. 均匀采样未交互对 → 负样本，目标数 = min(2 × 正样本数, |games| × |users|)
//  5. 洗牌后按 cfg.ValidationSplit 切分
//
// 随机性全部来自 cfg.Seed 派生的随机源，同一输入产出完全一致。
func Synthesize(games []*core.Game, interactions []core.Interaction, vocab *feature.Vocabulary, cfg core.TrainingConfig) (*Dataset, error) {
	cfg = cfg.Sanitized()

	userSet := make(map[string]struct{})
	userOrder := make([]string, 0, 16)
	for _, inter := range interactions {
		if inter.UserID == "" {
			continue
		}
		if _, ok := userSet[inter.UserID]; !ok {
			userSet[inter.UserID] = struct{}{}
			userOrder = append(userOrder, inter.UserID)
		}
	}

	if err := checkThresholds(len(games), len(interactions), len(userOrder), cfg); err != nil {
		return nil, err
	}

	resolver := index.ResolverForGames(games)
	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		if g != nil && g.ID != "" {
			gameIDs = append(gameIDs, g.ID)
		}
	}
	ds := &Dataset{
		Users:    index.Build(userOrder),
		Games:    index.Build(gameIDs),
		Resolver: resolver,
	}

	featureMap := vocab.EncodeAll(games)

	// 正样本。interacted 记录已观测对，负采样时排除。
	var examples []model.Example
	interacted := make(map[[2]int]struct{}, len(interactions))
	for _, inter := range interactions {
		uIdx, uOK := ds.Users.IndexOf(inter.UserID)
		gIdx, gOK := resolver.ResolveIndex(ds.Games, inter.GameID)
		if !uOK || !gOK {
			ds.Dropped++
			continue
		}
		canonical, _ := ds.Games.IDOf(gIdx)
		vec, ok := featureMap[canonical]
		if !ok || len(vec) == 0 {
			ds.Dropped++
			continue
		}
		interacted[[2]int{uIdx, gIdx}] = struct{}{}

		weight := inter.Action.Weight()
		if cfg.DuplicateWeights {
			// 旧训练框架没有原生样本权重，用 round(weight) 份复制近似
			copies := int(weight + 0.5)
			for c := 0; c < copies; c++ {
				examples = append(examples, model.Example{
					UserIdx: uIdx, GameIdx: gIdx, Features: vec, Label: 1, Weight: 1,
				})
			}
			ds.Positives += copies
		} else {
			examples = append(examples, model.Example{
				UserIdx: uIdx, GameIdx: gIdx, Features: vec, Label: 1, Weight: weight,
			})
			ds.Positives++
		}
	}

	if ds.Positives == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInsufficientData,
			fmt.Sprintf("dataset: no interaction resolved to a trainable example (%d dropped)", ds.Dropped))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	// 负样本：均匀采样未交互对。目标数有上限，采样尝试数封顶防止
	// 稠密交互矩阵下的死循环。
	target := 2 * ds.Positives
	if limit := ds.Games.Len() * ds.Users.Len(); target > limit {
		target = limit
	}
	sampled := make(map[[2]int]struct{}, target)
	for attempts := 0; ds.Negatives < target && attempts < target*10; attempts++ {
		pair := [2]int{rng.Intn(ds.Users.Len()), rng.Intn(ds.Games.Len())}
		if _, ok := interacted[pair]; ok {
			continue
		}
		if _, ok := sampled[pair]; ok {
			continue
		}
		sampled[pair] = struct{}{}
		canonical, _ := ds.Games.IDOf(pair[1])
		vec, ok := featureMap[canonical]
		if !ok {
			continue
		}
		examples = append(examples, model.Example{
			UserIdx: pair[0], GameIdx: pair[1], Features: vec, Label: 0, Weight: 1,
		})
		ds.Negatives++
	}

	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	valCount := int(float64(len(examples)) * cfg.ValidationSplit)
	if valCount >= len(examples) {
		valCount = len(examples) - 1
	}
	split := len(examples) - valCount
	ds.Train = examples[:split]
	ds.Val = examples[split:]
	return ds, nil
}

func checkThresholds(games, interactions, users int, cfg core.TrainingConfig) error {
	if games < cfg.MinGames {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInsufficientData,
			fmt.Sprintf("dataset: %d games, need at least %d", games, cfg.MinGames))
	}
	if interactions < cfg.MinInteractions {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInsufficientData,
			fmt.Sprintf("dataset: %d interactions, need at least %d", interactions, cfg.MinInteractions))
	}
	if users < cfg.MinUsers {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInsufficientData,
			fmt.Sprintf("dataset: %d distinct users, need at least %d", users, cfg.MinUsers))
	}
	return nil
}
