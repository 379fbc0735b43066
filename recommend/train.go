package recommend

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/dataset"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/model"
)

// TrainOutput 是一次训练运行的完整产物与摘要。
type TrainOutput struct {
	Network  *model.Network
	Metadata *feature.Metadata
	Result   *model.TrainResult

	// 训练集摘要（诊断/日志用）
	Positives int
	Negatives int
	Dropped   int
}

// Train 执行一次完整的离线训练：
//
//	目录 + 全量交互 → 词表 → 训练集合成 → 模型训练 → 产物组装
//
// 数据量不满足训练门槛时返回 INSUFFICIENT_DATA，不产出任何产物。
// 训练由运维触发、单协程批处理，与服务进程互不干扰；产出的
// (Network, Metadata) 必须成对持久化，见 SaveArtifactToFiles / SaveArtifactToStore。
func Train(ctx context.Context, provider core.DataProvider, cfg core.TrainingConfig, logger zerolog.Logger) (*TrainOutput, error) {
	cfg = cfg.Sanitized()

	games, err := provider.GetGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommend: load catalog: %w", err)
	}
	interactions, err := provider.GetAllInteractions(ctx)
	if err != nil && !core.IsNotFound(err) {
		return nil, fmt.Errorf("recommend: load interactions: %w", err)
	}

	logger.Info().
		Int("games", len(games)).
		Int("interactions", len(interactions)).
		Msg("training data loaded")

	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{
		TagsByFrequency: cfg.TagsByFrequency,
	})

	ds, err := dataset.Synthesize(games, interactions, vocab, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("positives", ds.Positives).
		Int("negatives", ds.Negatives).
		Int("dropped", ds.Dropped).
		Int("train", len(ds.Train)).
		Int("val", len(ds.Val)).
		Msg("training set synthesized")

	trainer := model.NewTrainer(cfg, logger)
	net, result, err := trainer.Fit(ds.Users.Len(), ds.Games.Len(), vocab.VectorSize(), ds.Train, ds.Val)
	if err != nil {
		return nil, err
	}

	meta := feature.NewMetadata(ds.Users, ds.Games, vocab, cfg)
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	return &TrainOutput{
		Network:   net,
		Metadata:  meta,
		Result:    result,
		Positives: ds.Positives,
		Negatives: ds.Negatives,
		Dropped:   ds.Dropped,
	}, nil
}

// LoadTrainingConfig 从 YAML 文件加载训练配置，未出现的字段保持默认值。
func LoadTrainingConfig(path string) (core.TrainingConfig, error) {
	cfg := core.DefaultTrainingConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("recommend: read training config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("recommend: parse training config: %w", err)
	}
	return cfg.Sanitized(), nil
}

// SaveArtifactToFiles 把训练产物成对写到本地文件。
func SaveArtifactToFiles(out *TrainOutput, weightsPath, metadataPath string) error {
	if err := out.Network.SaveToFile(weightsPath); err != nil {
		return err
	}
	return out.Metadata.SaveToFile(metadataPath)
}

// SaveArtifactToStore 把训练产物成对写入 Store，与 StoreSource 的 key 约定对应。
func SaveArtifactToStore(ctx context.Context, store core.Store, out *TrainOutput, weightsKey, metadataKey string) error {
	weights, err := out.Network.Marshal()
	if err != nil {
		return fmt.Errorf("recommend: marshal weights: %w", err)
	}
	meta, err := out.Metadata.Marshal()
	if err != nil {
		return fmt.Errorf("recommend: marshal metadata: %w", err)
	}
	if err := store.Set(ctx, weightsKey, weights); err != nil {
		return fmt.Errorf("recommend: store weights at %q: %w", weightsKey, err)
	}
	if err := store.Set(ctx, metadataKey, meta); err != nil {
		return fmt.Errorf("recommend: store metadata at %q: %w", metadataKey, err)
	}
	return nil
}
