package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai_room_design/config"
	"ai_room_design/logger"
	"ai_room_design/models"
	"ai_room_design/picker"
	"ai_room_design/repository"
	"ai_room_design/utils"
)

// compressRoomImage 把房间图片压缩成小尺寸JPEG，降低文本模型的输入开销
func compressRoomImage(b64 string, maxDim, quality int) (string, error) {
	img, err := utils.DecodeBase64Image(b64)
	if err != nil {
		return "", err
	}
	return utils.EncodeJPEGBase64(img, maxDim, quality)
}

// GenerateDesignQueries 基于房间图片和设计表单生成亚马逊搜索词
func GenerateDesignQueries(ctx context.Context, cfg *config.Config, req *models.DesignFormRequest) ([]string, error) {
	prompt := BuildDesignQueriesPrompt(req)

	var imageB64 string
	if len(req.Images) > 0 && strings.TrimSpace(req.Images[0]) != "" {
		compressed, err := compressRoomImage(req.Images[0], 512, cfg.Image.Quality)
		if err != nil {
			logger.Warn("房间图片压缩失败，按纯文本请求处理", "error", err)
		} else {
			imageB64 = compressed
		}
	}

	text, err := GenerateDesignText(ctx, cfg, prompt, imageB64, "image/jpeg")
	if err != nil {
		return nil, err
	}

	queries := parseQueryLines(text)
	if len(queries) == 0 {
		return nil, fmt.Errorf("模型未返回有效搜索词")
	}
	return queries, nil
}

// parseQueryLines 逐行解析模型输出，去掉空行和列表符号
func parseQueryLines(text string) []string {
	var queries []string
	for _, line := range strings.Split(text, "\n") {
		q := strings.TrimSpace(line)
		q = strings.TrimLeft(q, "-*•0123456789. ")
		q = strings.Trim(q, "\"")
		if q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// ListDesignHistory 查询最近的设计记录
func ListDesignHistory(limit int) ([]models.DesignRun, error) {
	return repository.ListRecentRuns(limit)
}

// ProcessDesignForm 处理设计表单：生成搜索词、并发搜索商品、预算内选品
// 历史落库为尽力而为，失败只记日志不影响响应
func ProcessDesignForm(ctx context.Context, cfg *config.Config, req *models.DesignFormRequest) (*models.DesignFormResponse, error) {
	queries, err := GenerateDesignQueries(ctx, cfg, req)
	if err != nil {
		return nil, err
	}
	logger.Info("搜索词生成完成", "count", len(queries))

	queryResults := SearchAll(ctx, cfg, queries)

	opts := picker.Options{
		MinRating:  cfg.Picker.MinRating,
		MinReviews: cfg.Picker.MinReviews,
		CapFlex:    cfg.Picker.CapFlex,
	}
	picks := picker.PickProductsWithBudget(queryResults, req.Budget, req.Style, req.Notes, req.SelectedProducts, opts)

	var totalCost float64
	for _, p := range picks {
		if p.ExtractedPrice != nil {
			totalCost += *p.ExtractedPrice
		}
	}
	logger.Info("选品完成", "picks", len(picks), "total_cost", totalCost, "budget", req.Budget)

	run := &models.DesignRun{
		RunID:     uuid.New().String(),
		Budget:    req.Budget,
		Style:     req.Style,
		Notes:     req.Notes,
		Queries:   queries,
		Picks:     picks,
		TotalCost: totalCost,
		CreatedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := repository.SaveDesignRun(run); err != nil {
		logger.Error("保存设计记录失败", "run_id", run.RunID, "error", err)
	}

	reasoning := fmt.Sprintf("Selected %d products across %d searches, estimated total $%.2f within budget $%.0f.",
		len(picks), len(queries), totalCost, req.Budget)

	return &models.DesignFormResponse{
		SearchQueries:       queries,
		RecommendedProducts: picks,
		Reasoning:           reasoning,
		Status:              "success",
	}, nil
}
