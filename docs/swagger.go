package docs

// @title AI房间设计 API
// @version 1.0
// @description 基于房间照片的AI设计服务：生成搜索词、预算内选品、房间合成图和漫游视频
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https
