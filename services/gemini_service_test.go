package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_room_design/config"
)

func geminiTestConfig(serverURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Gemini.APIKey = "text-key"
	cfg.Gemini.ImageAPIKey = "image-key"
	cfg.Gemini.BaseURL = serverURL
	cfg.Gemini.APIVersion = "v1beta"
	cfg.Gemini.TextModel = "gemini-2.5-flash-lite"
	cfg.Gemini.ImageModel = "gemini-2.5-flash-image-preview"
	cfg.Gemini.Temperature = 0.8
	cfg.Gemini.MaxOutTokens = 800
	cfg.Gemini.TimeoutSec = 5
	cfg.Gemini.ImgTimeoutSec = 5
	return cfg
}

func TestGenerateDesignText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": "modern sofa\n"},
					map[string]any{"text": "floor lamp"},
				}}},
			},
		})
	}))
	defer srv.Close()

	cfg := geminiTestConfig(srv.URL)
	text, err := GenerateDesignText(context.Background(), cfg, "plan the room", "aW1n", "image/jpeg")
	require.NoError(t, err)

	// 多个text部分拼接
	assert.Equal(t, "modern sofa\nfloor lamp", text)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash-lite:generateContent", gotPath)
	assert.Equal(t, "text-key", gotKey)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, "plan the room", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", gotBody.Contents[0].Parts[1].InlineData.MimeType)
	require.NotNil(t, gotBody.GenerationConfig)
	assert.Equal(t, 800, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestGenerateDesignTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := GenerateDesignText(context.Background(), geminiTestConfig(srv.URL), "prompt", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGenerateDesignTextEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	_, err := GenerateDesignText(context.Background(), geminiTestConfig(srv.URL), "prompt", "", "")
	assert.Error(t, err)
}

func TestGenerateCompositeImage(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": "here is your room"},
					map[string]any{"inlineData": map[string]any{
						"mimeType": "image/png",
						"data":     "cG5nZGF0YQ==",
					}},
				}}},
			},
		})
	}))
	defer srv.Close()

	cfg := geminiTestConfig(srv.URL)
	blob, err := GenerateCompositeImage(context.Background(), cfg, "compose", "c2hlZXQ=", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image-preview:generateContent", gotPath)
	assert.Equal(t, "image-key", gotKey)
	assert.Equal(t, "image/png", blob.MimeType)
	assert.Equal(t, "cG5nZGF0YQ==", blob.Data)
}

// 响应里只有文本没有图片时报错
func TestGenerateCompositeImageNoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": "cannot generate"},
				}}},
			},
		})
	}))
	defer srv.Close()

	_, err := GenerateCompositeImage(context.Background(), geminiTestConfig(srv.URL), "compose", "c2hlZXQ=", "image/jpeg")
	assert.Error(t, err)
}
