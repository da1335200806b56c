package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai_room_design/config"
	"ai_room_design/logger"
)

// 定义Gemini generateContent API请求和响应结构
type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineBlob `json:"inlineData,omitempty"`
}

type inlineBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64编码的图片数据
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// geminiResult 一次模型调用的解析结果：拼接后的文本和内联图片
type geminiResult struct {
	Text   string
	Images []inlineBlob
}

// callGemini 调用Gemini generateContent接口
// 非2xx响应把响应体原样带进错误信息，便于排查配额/参数问题
func callGemini(ctx context.Context, cfg *config.Config, apiKey, model string, payload geminiRequest, timeout time.Duration) (*geminiResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent",
		strings.TrimRight(cfg.Gemini.BaseURL, "/"), cfg.Gemini.APIVersion, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	startTime := time.Now()
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("Gemini请求失败", "model", model, "error", err)
		return nil, fmt.Errorf("Gemini请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	logger.Info("Gemini响应",
		"model", model,
		"status_code", resp.StatusCode,
		"response_size", len(raw),
		"duration_ms", time.Since(startTime).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("Gemini API %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return nil, fmt.Errorf("Gemini响应中没有候选内容")
	}

	var result geminiResult
	var textBuilder strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			result.Images = append(result.Images, *p.InlineData)
		}
	}
	result.Text = textBuilder.String()
	return &result, nil
}

// GenerateDesignText 调用文本模型，prompt可附带一张内联图片（imageB64为空则纯文本）
func GenerateDesignText(ctx context.Context, cfg *config.Config, prompt, imageB64, mimeType string) (string, error) {
	parts := []geminiPart{{Text: prompt}}
	if imageB64 != "" {
		parts = append(parts, geminiPart{InlineData: &inlineBlob{
			MimeType: mimeType,
			Data:     imageB64,
		}})
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutTokens,
		},
	}

	timeout := time.Duration(cfg.Gemini.TimeoutSec) * time.Second
	result, err := callGemini(ctx, cfg, cfg.Gemini.APIKey, cfg.Gemini.TextModel, payload, timeout)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("Gemini响应中没有文本内容")
	}
	return result.Text, nil
}

// GenerateCompositeImage 调用图像模型生成房间合成图，返回第一张内联图片
func GenerateCompositeImage(ctx context.Context, cfg *config.Config, prompt, imageB64, mimeType string) (*inlineBlob, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &inlineBlob{MimeType: mimeType, Data: imageB64}},
			},
		}},
	}

	timeout := time.Duration(cfg.Gemini.ImgTimeoutSec) * time.Second
	result, err := callGemini(ctx, cfg, cfg.Gemini.ImageAPIKey, cfg.Gemini.ImageModel, payload, timeout)
	if err != nil {
		return nil, err
	}
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("Gemini响应中没有生成图片")
	}
	return &result.Images[0], nil
}
