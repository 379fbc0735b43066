package core

import "time"

// TrainingConfig 是训练链路的配置，贯穿数据集构造、模型训练与产物元数据。
// 它会原样写入特征元数据（JSON），加载端据此还原训练时的行为。
type TrainingConfig struct {
	Epochs          int     `yaml:"epochs" json:"epochs"`
	BatchSize       int     `yaml:"batch_size" json:"batchSize"`
	LearningRate    float64 `yaml:"learning_rate" json:"learningRate"`
	ValidationSplit float64 `yaml:"validation_split" json:"validationSplit"`

	// 训练门槛：任一不满足则拒绝训练（INSUFFICIENT_DATA）
	MinGames        int `yaml:"min_games" json:"minGames"`
	MinInteractions int `yaml:"min_interactions" json:"minInteractions"`
	MinUsers        int `yaml:"min_users" json:"minUsers"`

	// TopN 是推荐列表的默认长度
	TopN int `yaml:"top_n" json:"topN"`

	// Seed 固定随机源，保证同一份数据训练结果可复现
	Seed int64 `yaml:"seed" json:"seed"`

	// DuplicateWeights 启用样本复制式加权（每个正样本复制 round(weight) 份、
	// 权重归一），用于与旧训练产物对齐；默认使用原生样本权重。
	DuplicateWeights bool `yaml:"duplicate_weights" json:"duplicateWeights,omitempty"`

	// TagsByFrequency 按出现频次挑选标签词表；默认按首次出现顺序取前 20 个。
	TagsByFrequency bool `yaml:"tags_by_frequency" json:"tagsByFrequency,omitempty"`
}

// DefaultTrainingConfig 返回默认训练配置。
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Epochs:          50,
		BatchSize:       32,
		LearningRate:    0.001,
		ValidationSplit: 0.2,
		MinGames:        50,
		MinInteractions: 10,
		MinUsers:        1,
		TopN:            20,
		Seed:            42,
	}
}

// EngineConfig 是推荐引擎运行期配置。
type EngineConfig struct {
	// TopN 推荐列表长度
	TopN int `yaml:"top_n" json:"topN"`

	// ResultKeyPrefix 推荐结果持久化的键前缀，完整键为 {prefix}:{userID}
	ResultKeyPrefix string `yaml:"result_key_prefix" json:"resultKeyPrefix"`

	// ResultTTL 推荐结果的过期时间，零值表示不过期
	ResultTTL time.Duration `yaml:"result_ttl" json:"resultTTL"`

	// InteractedKeyPrefix 用户已交互游戏集合的键前缀
	InteractedKeyPrefix string `yaml:"interacted_key_prefix" json:"interactedKeyPrefix"`

	// ScoreParallel 排序节点的并发打分上限，<=1 时串行
	ScoreParallel int `yaml:"score_parallel" json:"scoreParallel,omitempty"`
}

// DefaultEngineConfig 返回默认引擎配置。
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TopN:                20,
		ResultKeyPrefix:     "rec:user",
		InteractedKeyPrefix: "interacted:user",
	}
}

// Sanitized 返回填补了零值字段的配置副本。
func (c EngineConfig) Sanitized() EngineConfig {
	def := DefaultEngineConfig()
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.ResultKeyPrefix == "" {
		c.ResultKeyPrefix = def.ResultKeyPrefix
	}
	if c.InteractedKeyPrefix == "" {
		c.InteractedKeyPrefix = def.InteractedKeyPrefix
	}
	return c
}

// Sanitized 返回填补了零值字段的配置副本，调用方可以只覆盖关心的字段。
func (c TrainingConfig) Sanitized() TrainingConfig {
	def := DefaultTrainingConfig()
	if c.Epochs <= 0 {
		c.Epochs = def.Epochs
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.LearningRate <= 0 {
		c.LearningRate = def.LearningRate
	}
	if c.ValidationSplit <= 0 || c.ValidationSplit >= 1 {
		c.ValidationSplit = def.ValidationSplit
	}
	if c.MinGames <= 0 {
		c.MinGames = def.MinGames
	}
	if c.MinInteractions <= 0 {
		c.MinInteractions = def.MinInteractions
	}
	if c.MinUsers <= 0 {
		c.MinUsers = def.MinUsers
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	return c
}
