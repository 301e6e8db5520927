package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSubreddits 默认检索的 Reddit 板块（可用 REDDIT_SUBREDDITS 覆盖）
var DefaultSubreddits = []string{
	"LocalLLM",
	"LocalLlaMa",
	"ChatGPT",
	"ArtificialIntelligence",
	"OpenSourceeAI",
	"singularity",
	"machinelearningnews",
	"SillyTavernAI",
	"StableDiffusion",
}

// Config 全局配置，由环境变量加载后显式传递给各组件
type Config struct {
	// 存储
	DatabasePath string
	ExportDir    string

	// Web 服务
	ServerPort string

	// HuggingFace
	HuggingFaceToken string
	HFAPITimeout     time.Duration
	HFRateLimit      float64 // 每秒请求数

	// Reddit
	RedditUserAgent string
	RedditTimeout   time.Duration
	RedditRateLimit float64 // 每秒请求数
	Subreddits      []string
}

// Load 读取环境变量构建配置（.env 由 main 里的 godotenv 先加载）
func Load() *Config {
	return &Config{
		DatabasePath:     getEnv("DATABASE_PATH", "./data/discussions.db"),
		ExportDir:        getEnv("EXPORT_DIR", "./data/exports"),
		ServerPort:       getEnv("PORT", "8080"),
		HuggingFaceToken: os.Getenv("HUGGINGFACE_TOKEN"),
		HFAPITimeout:     getEnvSeconds("HF_API_TIMEOUT", 30),
		HFRateLimit:      getEnvFloat("HF_RATE_LIMIT", 2.0),
		RedditUserAgent:  getEnv("REDDIT_USER_AGENT", "DiscussionFetcher/1.0"),
		RedditTimeout:    getEnvSeconds("REDDIT_API_TIMEOUT", 30),
		RedditRateLimit:  getEnvFloat("REDDIT_RATE_LIMIT", 1.0),
		Subreddits:       getEnvList("REDDIT_SUBREDDITS", DefaultSubreddits),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
