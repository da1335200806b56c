package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"ai_room_design/config"
	"ai_room_design/logger"
	"ai_room_design/picker"
)

// SearchAmazonProducts 通过SerpAPI搜索亚马逊商品，返回原始JSON结果
func SearchAmazonProducts(ctx context.Context, cfg *config.Config, query string) (map[string]any, error) {
	params := url.Values{}
	params.Set("engine", "amazon")
	params.Set("amazon_domain", cfg.SerpAPI.AmazonDomain)
	params.Set("k", query)
	params.Set("api_key", cfg.SerpAPI.APIKey)

	reqURL := cfg.SerpAPI.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建搜索请求失败: %w", err)
	}

	client := &http.Client{Timeout: time.Duration(cfg.SerpAPI.TimeoutSec) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("搜索请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取搜索响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI %s", resp.Status)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}
	return data, nil
}

// SearchAll 并发执行所有搜索词，结果按输入顺序返回
// 单个搜索失败只记录日志并标记失败，不影响其他搜索
func SearchAll(ctx context.Context, cfg *config.Config, queries []string) []picker.QueryResult {
	results := make([]picker.QueryResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	limit := cfg.SerpAPI.MaxConcurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			data, err := SearchAmazonProducts(gctx, cfg, q)
			if err != nil {
				logger.Warn("Amazon搜索失败", "query", q, "error", err)
				results[i] = picker.QueryResult{Query: q, Success: false}
				return nil
			}
			results[i] = picker.QueryResult{Query: q, Success: true, RawData: data}
			return nil
		})
	}

	// worker不返回错误，Wait只用于等待全部完成
	_ = g.Wait()
	return results
}
