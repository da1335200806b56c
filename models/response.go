package models

// 响应码定义
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (1000-1999)
	CodeInvalidParams = 1000 // 无效的参数
	CodeMissingParams = 1001 // 缺少必要参数
	CodeInvalidImage  = 1002 // 图片数据无效
	CodeNoHistoryData = 1003 // 没有设计历史数据

	// 服务端错误 (2000-2999)
	CodeServerError        = 2000 // 服务器内部错误
	CodeDatabaseError      = 2001 // 数据库错误
	CodeQueryGenError      = 2002 // 搜索查询生成错误
	CodeImageGenError      = 2003 // 合成图生成错误
	CodeVideoGenError      = 2004 // 视频生成错误
	CodeThirdPartyAPIError = 2005 // 第三方API错误
	CodeVideoTimeout       = 2006 // 视频生成超时
)

// 错误码对应的消息
var CodeMessages = map[int]string{
	CodeSuccess:            "success",
	CodeInvalidParams:      "无效的参数",
	CodeMissingParams:      "缺少必要参数",
	CodeInvalidImage:       "图片数据无效",
	CodeNoHistoryData:      "没有设计历史数据",
	CodeServerError:        "服务器内部错误",
	CodeDatabaseError:      "数据库错误",
	CodeQueryGenError:      "搜索查询生成错误",
	CodeImageGenError:      "合成图生成错误",
	CodeVideoGenError:      "视频生成错误",
	CodeThirdPartyAPIError: "第三方API错误",
	CodeVideoTimeout:       "视频生成超时",
}

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Code:    CodeSuccess,
		Message: CodeMessages[CodeSuccess],
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, data interface{}) APIResponse {
	message, exists := CodeMessages[code]
	if !exists {
		message = "未知错误"
	}
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewCustomErrorResponse 创建自定义错误消息的响应
func NewCustomErrorResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
