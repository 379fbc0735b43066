// Package builders 注册内置 Node 的配置构建逻辑。
// 配置驱动组装时在入口处 import _ "github.com/rushteam/gamerec/config/builders" 触发注册。
//
// 目录/存储/模型句柄等运行期依赖无法从配置文件表达，
// 由调用方在构建 Pipeline 前通过 Use* 注入；未注入时对应 Node 按空依赖降级。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/gamerec/config"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/conv"
	"github.com/rushteam/gamerec/recall"
	"github.com/rushteam/gamerec/rerank"
)

func init() {
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("recall.popularity", BuildPopularityNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("filter.rule", BuildRuleFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("feature.enrich", BuildFeatureEnrichNode)
}

// 运行期依赖注入点。
var (
	gameProvider    core.GameProvider
	sharedStore     core.Store
	featureProvider feature.Provider
)

// UseGameProvider 注入目录数据源，供 recall.catalog / recall.popularity 使用。
func UseGameProvider(p core.GameProvider) { gameProvider = p }

// UseStore 注入存储后端，供人气召回与黑名单/已交互过滤使用。
func UseStore(s core.Store) { sharedStore = s }

// UseFeatureProvider 注入特征数据源，供 feature.enrich 使用。
func UseFeatureProvider(p feature.Provider) { featureProvider = p }

func BuildCatalogNode(_ map[string]interface{}) (pipeline.Node, error) {
	return &recall.Catalog{Provider: gameProvider}, nil
}

func BuildPopularityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return buildPopularity(cfg), nil
}

func buildPopularity(cfg map[string]interface{}) *recall.Popularity {
	return &recall.Popularity{
		Store:    sharedStore,
		Key:      conv.ConfigGet(cfg, "key", ""),
		Provider: gameProvider,
		Limit:    int(conv.ConfigGetInt64(cfg, "limit", 0)),
	}
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "catalog":
			sources = append(sources, &recall.Catalog{Provider: gameProvider})
		case "popularity":
			sources = append(sources, buildPopularity(sourceMap))
		default:
			return nil, fmt.Errorf("unsupported source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", ""),
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &filter.FilterNode{}

	var adapter *filter.StoreAdapter
	if sharedStore != nil {
		adapter = filter.NewStoreAdapter(sharedStore)
	}

	if ids := conv.SliceAnyToString(cfg["blacklist"]); len(ids) > 0 {
		node.Filters = append(node.Filters, filter.NewBlacklistFilter(ids, nil, ""))
	}
	if key := conv.ConfigGet(cfg, "blacklist_key", ""); key != "" {
		node.Filters = append(node.Filters, filter.NewBlacklistFilter(nil, adapter, key))
	}
	if conv.ConfigGet(cfg, "interacted", false) {
		f := &filter.InteractedFilter{
			KeyPrefix: conv.ConfigGet(cfg, "interacted_key_prefix", ""),
		}
		if adapter != nil {
			f.Store = adapter
		}
		node.Filters = append(node.Filters, f)
	}
	return node, nil
}

func BuildRuleFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("filter.rule: expr is required")
	}
	rule, err := filter.NewRuleFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{rule}}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{LabelKey: conv.ConfigGet(cfg, "label_key", "")}, nil
}

func BuildFeatureEnrichNode(_ map[string]interface{}) (pipeline.Node, error) {
	return &feature.EnrichNode{Provider: featureProvider}, nil
}
