package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		Addr           string   `yaml:"-"` // 不从配置文件读取，而是在加载后计算
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Gemini struct {
		APIKey        string  `yaml:"api_key"`       // 文本模型（查询生成）的密钥
		ImageAPIKey   string  `yaml:"image_api_key"` // 图像模型（合成图）的密钥，缺省时复用api_key
		BaseURL       string  `yaml:"base_url"`
		APIVersion    string  `yaml:"api_version"`
		TextModel     string  `yaml:"text_model"`
		ImageModel    string  `yaml:"image_model"`
		Temperature   float64 `yaml:"temperature"`
		MaxOutTokens  int     `yaml:"max_output_tokens"`
		TimeoutSec    int     `yaml:"timeout_sec"`
		ImgTimeoutSec int     `yaml:"image_timeout_sec"`
	} `yaml:"gemini"`
	SerpAPI struct {
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		AmazonDomain   string `yaml:"amazon_domain"`
		TimeoutSec     int    `yaml:"timeout_sec"`
		MaxConcurrency int    `yaml:"max_concurrency"` // 并发搜索的上限
	} `yaml:"serpapi"`
	Picker struct {
		MinRating  float64 `yaml:"min_rating"`
		MinReviews int     `yaml:"min_reviews"`
		CapFlex    float64 `yaml:"cap_flex"` // 单查询价格上限的弹性倍数
	} `yaml:"picker"`
	Image struct {
		Cols           int `yaml:"cols"`
		Tile           int `yaml:"tile"`
		Padding        int `yaml:"padding"`
		Gap            int `yaml:"gap"`
		MaxInputDim    int `yaml:"max_input_dim"`
		RoomLongEdge   int `yaml:"room_long_edge"`
		OutMaxLongEdge int `yaml:"out_max_long_edge"`
		Quality        int `yaml:"quality"`
	} `yaml:"image"`
	Cache struct {
		MaxEntries int `yaml:"max_entries"` // 合成图缓存的最大条目数
	} `yaml:"cache"`
	Video struct {
		ScriptPath string `yaml:"script_path"`
		WorkDir    string `yaml:"work_dir"`
		OutputFile string `yaml:"output_file"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"video"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		ParseTime       bool   `yaml:"parse_time"`
		DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
	} `yaml:"database"`
	Timeouts struct {
		RequestSec  int `yaml:"request_sec"`  // 请求超时，单位：秒
		ResponseSec int `yaml:"response_sec"` // 响应超时，单位：秒
		IdleSec     int `yaml:"idle_sec"`     // 空闲超时，单位：秒
	} `yaml:"timeouts"`
	Scheduler struct {
		CheckIntervalSec int `yaml:"check_interval_sec"` // 调度器检查间隔（秒）
		CleanupHour      int `yaml:"cleanup_hour"`       // 每天清理历史记录的小时（0-23）
		CleanupMin       int `yaml:"cleanup_min"`        // 每天清理历史记录的分钟（0-59）
		RetentionDays    int `yaml:"retention_days"`     // 设计历史保留天数
	} `yaml:"scheduler"`
}

func Load() *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	var cfg Config

	// 尝试从config.yaml文件加载配置
	if data, err := os.ReadFile("config.yaml"); err == nil {
		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			log.Printf("Error loading config.yaml: %v, falling back to environment variables", err)
			return loadFromEnv()
		}
		log.Println("Loading configuration from config.yaml")

		// 计算 Server.Addr 字段
		cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

		// 从环境变量中加载敏感信息
		applySecretEnv(&cfg)
		applyDefaults(&cfg)

		// 计算 DB.DSN 字段
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = buildDSN(&cfg)
		}

		return &cfg
	}

	// 如果config.yaml不存在，则完全从环境变量加载配置
	return loadFromEnv()
}

func loadFromEnv() *Config {
	// 当config.yaml加载失败时，创建一个最小配置
	var cfg Config

	// 设置服务器地址
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	cfg.Server.Addr = fmt.Sprintf(":%d", cfg.Server.Port)

	applySecretEnv(&cfg)
	applyDefaults(&cfg)

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	} else if cfg.DB.Host != "" {
		cfg.DB.DSN = buildDSN(&cfg)
	}

	log.Println("配置从环境变量加载，部分配置可能缺失")
	return &cfg
}

// applySecretEnv 敏感信息只从环境变量读取，覆盖配置文件中的同名字段
func applySecretEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_USERNAME"); v != "" {
		cfg.DB.Username = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_IMAGE_API_KEY"); v != "" {
		cfg.Gemini.ImageAPIKey = v
	}
	if v := os.Getenv("SERPAPI_API_KEY"); v != "" {
		cfg.SerpAPI.APIKey = v
	}
}

// applyDefaults 为缺省字段填入默认值
func applyDefaults(cfg *Config) {
	if cfg.Gemini.BaseURL == "" {
		cfg.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Gemini.APIVersion == "" {
		cfg.Gemini.APIVersion = "v1beta"
	}
	if cfg.Gemini.TextModel == "" {
		cfg.Gemini.TextModel = "gemini-2.5-flash-lite"
	}
	if cfg.Gemini.ImageModel == "" {
		cfg.Gemini.ImageModel = "gemini-2.5-flash-image-preview"
	}
	if cfg.Gemini.ImageAPIKey == "" {
		cfg.Gemini.ImageAPIKey = cfg.Gemini.APIKey
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = 0.8
	}
	if cfg.Gemini.MaxOutTokens <= 0 {
		cfg.Gemini.MaxOutTokens = 800
	}
	if cfg.Gemini.TimeoutSec <= 0 {
		cfg.Gemini.TimeoutSec = 60
	}
	if cfg.Gemini.ImgTimeoutSec <= 0 {
		cfg.Gemini.ImgTimeoutSec = 180
	}
	if cfg.SerpAPI.BaseURL == "" {
		cfg.SerpAPI.BaseURL = "https://serpapi.com/search.json"
	}
	if cfg.SerpAPI.AmazonDomain == "" {
		cfg.SerpAPI.AmazonDomain = "amazon.com"
	}
	if cfg.SerpAPI.TimeoutSec <= 0 {
		cfg.SerpAPI.TimeoutSec = 30
	}
	if cfg.SerpAPI.MaxConcurrency <= 0 {
		cfg.SerpAPI.MaxConcurrency = 4
	}
	if cfg.Picker.MinRating == 0 {
		cfg.Picker.MinRating = 4.0
	}
	if cfg.Picker.MinReviews == 0 {
		cfg.Picker.MinReviews = 50
	}
	if cfg.Picker.CapFlex == 0 {
		cfg.Picker.CapFlex = 1.25
	}
	if cfg.Image.Cols <= 0 {
		cfg.Image.Cols = 4
	}
	if cfg.Image.Tile <= 0 {
		cfg.Image.Tile = 176
	}
	if cfg.Image.Padding <= 0 {
		cfg.Image.Padding = 6
	}
	if cfg.Image.Gap <= 0 {
		cfg.Image.Gap = 10
	}
	if cfg.Image.MaxInputDim <= 0 {
		cfg.Image.MaxInputDim = 864
	}
	if cfg.Image.RoomLongEdge <= 0 {
		cfg.Image.RoomLongEdge = 720
	}
	if cfg.Image.OutMaxLongEdge <= 0 {
		cfg.Image.OutMaxLongEdge = 896
	}
	if cfg.Image.Quality <= 0 {
		cfg.Image.Quality = 70
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 20
	}
	if cfg.Video.TimeoutSec <= 0 {
		cfg.Video.TimeoutSec = 300
	}
	if cfg.Scheduler.CheckIntervalSec <= 0 {
		cfg.Scheduler.CheckIntervalSec = 60
	}
	if cfg.Scheduler.RetentionDays <= 0 {
		cfg.Scheduler.RetentionDays = 30
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

func buildDSN(cfg *Config) string {
	if cfg.DB.Charset == "" {
		cfg.DB.Charset = "utf8mb4"
	}
	parseTime := ""
	if cfg.DB.ParseTime {
		parseTime = "&parseTime=true"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Database,
		cfg.DB.Charset,
		parseTime)
}
