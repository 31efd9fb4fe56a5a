// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Claude   ClaudeConfig   `mapstructure:"claude"`
	Relay    RelayConfig    `mapstructure:"relay"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig 存储管理 API 服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// TelegramConfig 存储 Telegram Bot 相关的配置。
// AllowedUsernames 为逗号分隔的用户名白名单（不含 @，大小写不敏感）。
type TelegramConfig struct {
	Token            string `mapstructure:"token"`
	AllowedUsernames string `mapstructure:"allowed_usernames"`
}

// ClaudeConfig 存储 Anthropic API 相关的配置。
type ClaudeConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RelayConfig 存储消息转发相关的配置。
// HistoryLimit 为可选的历史窗口上限（保留最近 N 条，0 表示不限制）。
// 注意：默认不限制，与原始行为保持一致；开启属于显式运维决策。
type RelayConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	HistoryLimit int `mapstructure:"history_limit"`
}

// JWTConfig 存储管理 API 的 JWT 相关配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// AdminConfig 存储管理 API 的登录凭证。
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Timeout 返回 Claude API 单次调用的超时时间。
func (c ClaudeConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AllowedSet 将白名单字符串解析为小写用户名集合。
func (c TelegramConfig) AllowedSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range strings.Split(c.AllowedUsernames, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 缺省值：与 Telegram 单条消息上限对齐
	viper.SetDefault("relay.chunk_size", 4096)
	viper.SetDefault("claude.base_url", "https://api.anthropic.com")
	viper.SetDefault("claude.max_tokens", 4096)
	viper.SetDefault("claude.timeout_seconds", 60)

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}

// Validate 校验启动所必需的配置项，缺失时返回错误。
// 进程应在接收任何消息之前因此退出（fail fast）。
func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Claude.APIKey == "" {
		return fmt.Errorf("claude.api_key is required")
	}
	if len(c.Telegram.AllowedSet()) == 0 {
		return fmt.Errorf("telegram.allowed_usernames is required")
	}
	if c.Claude.Model == "" {
		return fmt.Errorf("claude.model is required")
	}
	return nil
}
