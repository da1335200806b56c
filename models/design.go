package models

import "ai_room_design/picker"

// DesignFormRequest 前端设计表单请求
type DesignFormRequest struct {
	Budget           float64  `json:"budget" example:"900"`
	Style            string   `json:"style" example:"scandinavian"`
	Notes            string   `json:"notes,omitempty" example:"prefer light woods"`
	SelectedProducts []string `json:"selectedProducts"`
	Images           []string `json:"images"` // Base64编码的房间图片
}

// DesignFormResponse 设计表单处理结果
type DesignFormResponse struct {
	SearchQueries       []string               `json:"amazon_search_queries"`
	RecommendedProducts []picker.PickedProduct `json:"recommended_products"`
	Reasoning           string                 `json:"reasoning,omitempty"`
	Status              string                 `json:"status" example:"success"`
}

// ImageGenerationRequest 房间合成图生成请求
// 商品图片可以是base64，也可以是URL（由服务端抓取）
type ImageGenerationRequest struct {
	RoomImage        string   `json:"room_image"`
	ProductImages    []string `json:"product_images,omitempty"`
	ProductImageURLs []string `json:"product_image_urls,omitempty"`
	Prompt           string   `json:"prompt,omitempty"` // 可选的附加指令
}

// ImageGenerationResponse 合成图生成结果
type ImageGenerationResponse struct {
	GeneratedImage string `json:"generated_image"` // Base64编码的PNG
	Status         string `json:"status" example:"success"`
	Message        string `json:"message,omitempty"`
}

// VideoGenerationRequest 房间视频生成请求
type VideoGenerationRequest struct {
	RoomImage string `json:"room_image"` // Base64编码的房间图片
	Style     string `json:"style"`
	Prompt    string `json:"prompt,omitempty"`
}

// VideoGenerationResponse 视频生成结果
type VideoGenerationResponse struct {
	VideoPath string `json:"video_path"`
	VideoURL  string `json:"video_url"`
	Status    string `json:"status" example:"success"`
	Message   string `json:"message"`
}

// DesignRun 一次完整的设计请求记录（用于历史查询）
type DesignRun struct {
	RunID     string                 `json:"run_id"`
	Budget    float64                `json:"budget"`
	Style     string                 `json:"style"`
	Notes     string                 `json:"notes,omitempty"`
	Queries   []string               `json:"queries"`
	Picks     []picker.PickedProduct `json:"picks"`
	TotalCost float64                `json:"total_cost"`
	CreatedAt string                 `json:"created_at"`
}
