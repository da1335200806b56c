package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"ai_room_design/cache"
	"ai_room_design/config"
	"ai_room_design/logger"
	"ai_room_design/models"
	"ai_room_design/utils"
)

// compositeCache 合成图结果缓存，按请求指纹命中
var compositeCache = cache.NewStore(0)

// InitVisualizationCache 按配置重建缓存，在服务启动时调用一次
func InitVisualizationCache(cfg *config.Config) {
	compositeCache = cache.NewStore(cfg.Cache.MaxEntries)
}

// visualizationCacheKey 请求指纹：房间图前缀+附加指令+商品数量
// 房间图只取前100字符，避免对整张图做哈希
func visualizationCacheKey(req *models.ImageGenerationRequest) string {
	room := req.RoomImage
	if len(room) > 100 {
		room = room[:100]
	}
	raw := fmt.Sprintf("%s|%s|%d|%d", room, req.Prompt, len(req.ProductImages), len(req.ProductImageURLs))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

// fetchImageURL 下载单个商品图片并解码
func fetchImageURL(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	return utils.DecodeImageBytes(data)
}

// collectProductImages 汇总base64和URL两路商品图片，并按内容哈希去重
// 单张失败只记日志跳过，不影响整体流程
func collectProductImages(ctx context.Context, cfg *config.Config, req *models.ImageGenerationRequest) []image.Image {
	var products []image.Image
	seen := make(map[string]bool)

	add := func(img image.Image) {
		scaled := utils.Downscale(img, cfg.Image.MaxInputDim)
		h := utils.HashImage(scaled)
		if seen[h] {
			return
		}
		seen[h] = true
		products = append(products, scaled)
	}

	for i, b64 := range req.ProductImages {
		img, err := utils.DecodeBase64Image(b64)
		if err != nil {
			logger.Warn("商品图片解码失败", "index", i, "error", err)
			continue
		}
		add(img)
	}
	for _, u := range req.ProductImageURLs {
		if strings.TrimSpace(u) == "" {
			continue
		}
		img, err := fetchImageURL(ctx, u)
		if err != nil {
			logger.Warn("商品图片下载失败", "url", u, "error", err)
			continue
		}
		add(img)
	}
	return products
}

// GenerateRoomVisualization 生成房间合成图
// 流程：拼接房间图和商品网格 -> 调用图像模型 -> 返回base64 PNG
func GenerateRoomVisualization(ctx context.Context, cfg *config.Config, req *models.ImageGenerationRequest) (*models.ImageGenerationResponse, error) {
	key := visualizationCacheKey(req)
	if cached, ok := compositeCache.Get(key); ok {
		logger.Info("合成图缓存命中", "key", key)
		return &models.ImageGenerationResponse{
			GeneratedImage: cached,
			Status:         "success",
			Message:        "cached",
		}, nil
	}

	room, err := utils.DecodeBase64Image(req.RoomImage)
	if err != nil {
		return nil, fmt.Errorf("房间图片解码失败: %w", err)
	}
	room = utils.Downscale(room, cfg.Image.MaxInputDim)

	products := collectProductImages(ctx, cfg, req)
	logger.Info("商品图片就绪", "count", len(products))

	sheet := utils.BuildStackedSheet(room, products, utils.SheetOptions{
		Cols:         cfg.Image.Cols,
		Tile:         cfg.Image.Tile,
		Pad:          cfg.Image.Padding,
		Gap:          cfg.Image.Gap,
		RoomLongEdge: cfg.Image.RoomLongEdge,
	})

	sheetB64, err := utils.EncodeJPEGBase64(sheet, cfg.Image.OutMaxLongEdge, cfg.Image.Quality)
	if err != nil {
		return nil, fmt.Errorf("拼接图编码失败: %w", err)
	}

	prompt := BuildCompositePrompt(req.Prompt, len(products))
	blob, err := GenerateCompositeImage(ctx, cfg, prompt, sheetB64, "image/jpeg")
	if err != nil {
		return nil, err
	}

	// 统一输出PNG，模型返回其他格式时转码
	out := blob.Data
	if !strings.HasPrefix(blob.MimeType, "image/png") {
		data, err := base64.StdEncoding.DecodeString(blob.Data)
		if err != nil {
			return nil, fmt.Errorf("生成图片解码失败: %w", err)
		}
		img, err := utils.DecodeImageBytes(data)
		if err != nil {
			return nil, fmt.Errorf("生成图片解析失败: %w", err)
		}
		out, err = utils.EncodePNGBase64(img)
		if err != nil {
			return nil, fmt.Errorf("生成图片转码失败: %w", err)
		}
	}

	compositeCache.Put(key, out)
	return &models.ImageGenerationResponse{
		GeneratedImage: out,
		Status:         "success",
		Message:        fmt.Sprintf("generated with %d products", len(products)),
	}, nil
}
