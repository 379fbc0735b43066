package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// 权重产物格式版本。结构变更时递增，加载端据此拒绝不兼容产物。
const artifactVersion = 1

// artifact 是权重文件的外层包装：版本号 + 网络参数。
type artifact struct {
	Version int      `json:"version"`
	Network *Network `json:"network"`
}

// Marshal 把网络序列化为 JSON 权重产物，与元数据文档一起构成完整模型产物。
func (n *Network) Marshal() ([]byte, error) {
	return json.Marshal(&artifact{Version: artifactVersion, Network: n})
}

// UnmarshalNetwork 解析权重产物并校验结构完整性。
func UnmarshalNetwork(data []byte) (*Network, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("model: parse weights: %w", err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("model: unsupported weights version %d, want %d", a.Version, artifactVersion)
	}
	if a.Network == nil {
		return nil, fmt.Errorf("model: weights artifact missing network")
	}
	if err := a.Network.validate(); err != nil {
		return nil, err
	}
	return a.Network, nil
}

// validate 检查参数形状与声明的维度一致。损坏的产物宁可拒绝也不能带病服务。
func (n *Network) validate() error {
	if n.NumUsers <= 0 || n.NumGames <= 0 || n.FeatureSize <= 0 {
		return fmt.Errorf("model: invalid dimensions users=%d games=%d features=%d",
			n.NumUsers, n.NumGames, n.FeatureSize)
	}
	checks := []struct {
		name       string
		m          [][]float64
		rows, cols int
	}{
		{"userEmb", n.UserEmb, n.NumUsers, EmbeddingDim},
		{"gameEmb", n.GameEmb, n.NumGames, EmbeddingDim},
		{"featW", n.FeatW, FeatHiddenDim, n.FeatureSize},
		{"w1", n.W1, Hidden1Dim, ConcatDim},
		{"w2", n.W2, Hidden2Dim, Hidden1Dim},
		{"w3", n.W3, Hidden3Dim, Hidden2Dim},
	}
	for _, c := range checks {
		if len(c.m) != c.rows {
			return fmt.Errorf("model: %s has %d rows, want %d", c.name, len(c.m), c.rows)
		}
		for i, row := range c.m {
			if len(row) != c.cols {
				return fmt.Errorf("model: %s row %d has %d cols, want %d", c.name, i, len(row), c.cols)
			}
		}
	}
	vchecks := []struct {
		name string
		v    []float64
		n    int
	}{
		{"featB", n.FeatB, FeatHiddenDim},
		{"b1", n.B1, Hidden1Dim},
		{"b2", n.B2, Hidden2Dim},
		{"b3", n.B3, Hidden3Dim},
		{"wOut", n.WOut, Hidden3Dim},
	}
	for _, c := range vchecks {
		if len(c.v) != c.n {
			return fmt.Errorf("model: %s has length %d, want %d", c.name, len(c.v), c.n)
		}
	}
	return nil
}

// SaveToFile 把权重写到本地文件（训练端出口之一）。
func (n *Network) SaveToFile(path string) error {
	data, err := n.Marshal()
	if err != nil {
		return fmt.Errorf("model: marshal weights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("model: write weights: %w", err)
	}
	return nil
}

// LoadFromFile 从本地文件读取权重。
func LoadFromFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read weights: %w", err)
	}
	return UnmarshalNetwork(data)
}
