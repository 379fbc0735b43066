package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/index"
	"github.com/rushteam/gamerec/pkg/conv"
)

// Metadata 是模型产物的元数据文档（JSON 持久化），训练端写、推理端读。
//
// 它承载推理所需的一切非权重信息：
//   - 用户/游戏的稠密下标双射（嵌入层按下标取行）
//   - 特征词表（题材/标签/平台）与年份上界
//   - 向量长度（推理时校验编码协议一致性）
//   - 自由格式训练配置与训练时间戳
//
// 跨进程契约：字段名与 JSON key 固定，另一次部署的训练产物必须能无损加载。
type Metadata struct {
	UserIDToIndex map[string]int `json:"userIdToIndex"`
	IndexToUserID []string       `json:"indexToUserId"`
	GameIDToIndex map[string]int `json:"gameIdToIndex"`
	IndexToGameID []string       `json:"indexToGameId"`

	FeatureSize int `json:"featureSize"`
	NumUsers    int `json:"numUsers"`
	NumGames    int `json:"numGames"`

	GenreList    []string `json:"genreList"`
	TagList      []string `json:"tagList"`
	PlatformList []string `json:"platformList"`

	// MaxYear 是训练时固化的年份上界；历史产物可能缺失该字段，
	// 加载时回落到加载时刻的年份（见 Vocabulary）。
	MaxYear int `json:"maxYear,omitempty"`

	// Config 保留训练配置原貌（自由格式），未知字段随读随写不丢失。
	Config map[string]any `json:"config"`

	TrainedAt time.Time `json:"trainedAt"`
}

// NewMetadata 从训练期构件组装元数据。
func NewMetadata(users, games *index.Index, vocab *Vocabulary, cfg core.TrainingConfig) *Metadata {
	m := &Metadata{
		UserIDToIndex: make(map[string]int, users.Len()),
		IndexToUserID: users.IDs(),
		GameIDToIndex: make(map[string]int, games.Len()),
		IndexToGameID: games.IDs(),
		FeatureSize:   vocab.VectorSize(),
		NumUsers:      users.Len(),
		NumGames:      games.Len(),
		GenreList:     vocab.Genres,
		TagList:       vocab.Tags,
		PlatformList:  vocab.Platforms,
		MaxYear:       vocab.MaxYear,
		TrainedAt:     time.Now().UTC(),
	}
	for i, id := range m.IndexToUserID {
		m.UserIDToIndex[id] = i
	}
	for i, id := range m.IndexToGameID {
		m.GameIDToIndex[id] = i
	}
	m.Config = configToMap(cfg)
	return m
}

func configToMap(cfg core.TrainingConfig) map[string]any {
	data, err := json.Marshal(cfg)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// Validate 检查文档自洽性：计数与映射长度一致、双射无断裂。
// 加载端在使用前调用，损坏的产物宁可拒绝也不能带病服务。
func (m *Metadata) Validate() error {
	if m.NumUsers != len(m.IndexToUserID) || m.NumUsers != len(m.UserIDToIndex) {
		return fmt.Errorf("feature: metadata user count mismatch: numUsers=%d indexToUserId=%d userIdToIndex=%d",
			m.NumUsers, len(m.IndexToUserID), len(m.UserIDToIndex))
	}
	if m.NumGames != len(m.IndexToGameID) || m.NumGames != len(m.GameIDToIndex) {
		return fmt.Errorf("feature: metadata game count mismatch: numGames=%d indexToGameId=%d gameIdToIndex=%d",
			m.NumGames, len(m.IndexToGameID), len(m.GameIDToIndex))
	}
	if m.FeatureSize != len(m.GenreList)+len(m.TagList)+4 {
		return fmt.Errorf("feature: metadata featureSize=%d, want %d (|genres|+|tags|+4)",
			m.FeatureSize, len(m.GenreList)+len(m.TagList)+4)
	}
	for i, id := range m.IndexToUserID {
		if got, ok := m.UserIDToIndex[id]; !ok || got != i {
			return fmt.Errorf("feature: metadata user index broken at %d (%q)", i, id)
		}
	}
	for i, id := range m.IndexToGameID {
		if got, ok := m.GameIDToIndex[id]; !ok || got != i {
			return fmt.Errorf("feature: metadata game index broken at %d (%q)", i, id)
		}
	}
	return nil
}

// UserIndexOf 查询用户的稠密下标；不在训练映射中返回 (0, false)——冷启动判定条件。
func (m *Metadata) UserIndexOf(userID string) (int, bool) {
	i, ok := m.UserIDToIndex[userID]
	return i, ok
}

// GameIndexOf 查询游戏（规范 ID）的稠密下标。
func (m *Metadata) GameIndexOf(gameID string) (int, bool) {
	i, ok := m.GameIDToIndex[gameID]
	return i, ok
}

// UserIndex 还原用户下标映射。
func (m *Metadata) UserIndex() (*index.Index, error) {
	return index.FromIDs(m.IndexToUserID)
}

// GameIndex 还原游戏下标映射。
func (m *Metadata) GameIndex() (*index.Index, error) {
	return index.FromIDs(m.IndexToGameID)
}

// Vocabulary 还原训练时的特征词表。MaxYear 缺失的历史产物取当前年份。
func (m *Metadata) Vocabulary() *Vocabulary {
	return NewVocabulary(m.GenreList, m.TagList, m.PlatformList, m.MaxYear)
}

// TrainingConfig 从自由格式 Config 解出已知训练参数，未知 key 忽略、缺失 key 补默认值。
func (m *Metadata) TrainingConfig() core.TrainingConfig {
	cfg := core.TrainingConfig{
		Epochs:           int(conv.ConfigGetInt64(m.Config, "epochs", 0)),
		BatchSize:        int(conv.ConfigGetInt64(m.Config, "batchSize", 0)),
		LearningRate:     conv.ConfigGetFloat64(m.Config, "learningRate", 0),
		ValidationSplit:  conv.ConfigGetFloat64(m.Config, "validationSplit", 0),
		MinGames:         int(conv.ConfigGetInt64(m.Config, "minGames", 0)),
		MinInteractions:  int(conv.ConfigGetInt64(m.Config, "minInteractions", 0)),
		MinUsers:         int(conv.ConfigGetInt64(m.Config, "minUsers", 0)),
		TopN:             int(conv.ConfigGetInt64(m.Config, "topN", 0)),
		Seed:             conv.ConfigGetInt64(m.Config, "seed", 0),
		DuplicateWeights: conv.ConfigGet(m.Config, "duplicateWeights", false),
		TagsByFrequency:  conv.ConfigGet(m.Config, "tagsByFrequency", false),
	}
	return cfg.Sanitized()
}

// Marshal 序列化为 JSON 文档。
func (m *Metadata) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalMetadata 解析并校验元数据文档。
func UnmarshalMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("feature: parse metadata: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveToFile 把元数据写到本地文件（训练端出口之一）。
func (m *Metadata) SaveToFile(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("feature: marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("feature: write metadata: %w", err)
	}
	return nil
}
