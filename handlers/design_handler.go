package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"ai_room_design/config"
	_ "ai_room_design/docs" // 导入 swagger 文档
	"ai_room_design/models"
	"ai_room_design/services"
	"ai_room_design/utils"
)

// GenerateDesignQueriesHandler godoc
// @Summary 处理设计表单并返回推荐商品
// @Description 根据房间图片和预算生成亚马逊搜索词，并发搜索后在预算内选品
// @Tags 设计
// @Accept json
// @Produce json
// @Param request body models.DesignFormRequest true "设计表单"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/gemini/generate-design-queries [post]
func GenerateDesignQueriesHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.DesignFormRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if req.Budget <= 0 {
		utils.WriteCustomErrorResponse(w, models.CodeInvalidParams, "budget必须大于0", map[string]interface{}{})
		return
	}
	// 房间图片可选：没有图片时按纯文本分析处理
	if strings.TrimSpace(req.Style) == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"field": "style",
		})
		return
	}

	resp, err := services.ProcessDesignForm(r.Context(), cfg, &req)
	if err != nil {
		utils.WriteCustomErrorResponse(w, models.CodeQueryGenError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, resp)
}

// GenerateRoomVisualizationHandler godoc
// @Summary 生成房间合成图
// @Description 将商品图片合成进房间照片，返回base64编码的PNG
// @Tags 可视化
// @Accept json
// @Produce json
// @Param request body models.ImageGenerationRequest true "合成图请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/nano-banana/generate-room-visualization [post]
func GenerateRoomVisualizationHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.ImageGenerationRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RoomImage) == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"field": "room_image",
		})
		return
	}
	if len(req.ProductImages) == 0 && len(req.ProductImageURLs) == 0 {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"field": "product_images或product_image_urls",
		})
		return
	}

	resp, err := services.GenerateRoomVisualization(r.Context(), cfg, &req)
	if err != nil {
		code := models.CodeImageGenError
		if strings.Contains(err.Error(), "解码失败") {
			code = models.CodeInvalidImage
		}
		utils.WriteCustomErrorResponse(w, code, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, resp)
}

// GenerateRoomVideoHandler godoc
// @Summary 生成房间漫游视频
// @Description 基于房间图片调用外部脚本生成视频，返回视频路径
// @Tags 视频
// @Accept json
// @Produce json
// @Param request body models.VideoGenerationRequest true "视频生成请求"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/video/generate-room-video [post]
func GenerateRoomVideoHandler(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	var req models.VideoGenerationRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RoomImage) == "" {
		utils.WriteErrorResponse(w, models.CodeMissingParams, map[string]interface{}{
			"field": "room_image",
		})
		return
	}

	resp, err := services.GenerateRoomVideo(r.Context(), cfg, &req)
	if err != nil {
		if errors.Is(err, services.ErrVideoTimeout) {
			utils.WriteErrorResponse(w, models.CodeVideoTimeout, map[string]interface{}{})
			return
		}
		utils.WriteCustomErrorResponse(w, models.CodeVideoGenError, err.Error(), map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, resp)
}

// ListDesignHistoryHandler godoc
// @Summary 查询最近的设计记录
// @Description 返回最近的设计请求记录，包含搜索词和选品结果
// @Tags 设计
// @Produce json
// @Param limit query int false "返回条数，默认20"
// @Success 200 {object} models.APIResponse "成功"
// @Failure 500 {object} models.APIResponse "服务器错误"
// @Router /api/design/history [get]
func ListDesignHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := services.ListDesignHistory(limit)
	if err != nil {
		utils.HandleServiceError(w, err, models.CodeNoHistoryData)
		return
	}
	if len(runs) == 0 {
		utils.WriteErrorResponse(w, models.CodeNoHistoryData, map[string]interface{}{})
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// HealthHandler godoc
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} models.APIResponse "成功"
// @Router /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status": "ok",
	})
}

// RegisterRoutes 注册所有HTTP路由
func RegisterRoutes(r *chi.Mux, cfg *config.Config) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/", HealthHandler)
	r.Get("/health", HealthHandler)
	r.Get("/api/health", HealthHandler)

	r.Post("/api/gemini/generate-design-queries", func(w http.ResponseWriter, r *http.Request) {
		GenerateDesignQueriesHandler(w, r, cfg)
	})
	r.Post("/api/nano-banana/generate-room-visualization", func(w http.ResponseWriter, r *http.Request) {
		GenerateRoomVisualizationHandler(w, r, cfg)
	})
	r.Post("/api/video/generate-room-video", func(w http.ResponseWriter, r *http.Request) {
		GenerateRoomVideoHandler(w, r, cfg)
	})
	r.Get("/api/design/history", ListDesignHistoryHandler)

	// 生成的视频文件
	if cfg.Video.WorkDir != "" {
		fs := http.StripPrefix("/static/videos/", http.FileServer(http.Dir(cfg.Video.WorkDir)))
		r.Get("/static/videos/*", fs.ServeHTTP)
	}
}
