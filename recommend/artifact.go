package recommend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rushteam/gamerec/core"
)

// Artifact 是一次训练产出的完整模型产物：权重 + 特征元数据，
// 两者必须来自同一次训练运行，分开加载会导致下标错位。
type Artifact struct {
	// Weights 权重产物（JSON，见 model 包）
	Weights []byte

	// Metadata 特征元数据文档（JSON，见 feature 包）
	Metadata []byte
}

// ArtifactSource 是模型产物的加载来源。
//
// 实现：
//   - FileSource: 从本地文件加载（训练端默认出口）
//   - StoreSource: 从 core.Store 加载（跨进程分发）
//   - HTTPSource: 从 HTTP 端点加载（制品服务器 / 对象存储）
type ArtifactSource interface {
	// Name 返回来源名称（用于日志）
	Name() string

	// Fetch 加载产物。任何一项缺失都算失败，不返回半成品。
	Fetch(ctx context.Context) (*Artifact, error)
}

// FileSource 从本地文件系统加载产物。
type FileSource struct {
	// WeightsPath 权重文件路径
	WeightsPath string

	// MetadataPath 元数据文件路径
	MetadataPath string
}

func (s *FileSource) Name() string { return "artifact.file" }

func (s *FileSource) Fetch(_ context.Context) (*Artifact, error) {
	weights, err := os.ReadFile(s.WeightsPath)
	if err != nil {
		return nil, fmt.Errorf("recommend: read weights %s: %w", s.WeightsPath, err)
	}
	meta, err := os.ReadFile(s.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("recommend: read metadata %s: %w", s.MetadataPath, err)
	}
	return &Artifact{Weights: weights, Metadata: meta}, nil
}

// StoreSource 从 core.Store 加载产物（训练端用 SaveArtifactToStore 写入）。
type StoreSource struct {
	Store core.Store

	// WeightsKey 权重的存储 key，例如 "model:weights"
	WeightsKey string

	// MetadataKey 元数据的存储 key，例如 "model:metadata"
	MetadataKey string
}

func (s *StoreSource) Name() string { return "artifact.store" }

func (s *StoreSource) Fetch(ctx context.Context) (*Artifact, error) {
	weights, err := s.Store.Get(ctx, s.WeightsKey)
	if err != nil {
		return nil, fmt.Errorf("recommend: load weights from store key %q: %w", s.WeightsKey, err)
	}
	meta, err := s.Store.Get(ctx, s.MetadataKey)
	if err != nil {
		return nil, fmt.Errorf("recommend: load metadata from store key %q: %w", s.MetadataKey, err)
	}
	return &Artifact{Weights: weights, Metadata: meta}, nil
}

// HTTPSource 从 HTTP 端点加载产物（制品服务器、对象存储的公开 URL）。
type HTTPSource struct {
	// Client 为 nil 时使用 http.DefaultClient
	Client *http.Client

	WeightsURL  string
	MetadataURL string
}

func (s *HTTPSource) Name() string { return "artifact.http" }

func (s *HTTPSource) Fetch(ctx context.Context) (*Artifact, error) {
	weights, err := s.fetchURL(ctx, s.WeightsURL)
	if err != nil {
		return nil, fmt.Errorf("recommend: fetch weights: %w", err)
	}
	meta, err := s.fetchURL(ctx, s.MetadataURL)
	if err != nil {
		return nil, fmt.Errorf("recommend: fetch metadata: %w", err)
	}
	return &Artifact{Weights: weights, Metadata: meta}, nil
}

func (s *HTTPSource) fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
