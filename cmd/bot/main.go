// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tg-claude-relay/internal/bot"
	"tg-claude-relay/internal/config"
	"tg-claude-relay/internal/handler"
	"tg-claude-relay/internal/middleware"
	"tg-claude-relay/internal/repository"
	"tg-claude-relay/internal/service"
	"tg-claude-relay/pkg/claude"
	"tg-claude-relay/pkg/log"
	"tg-claude-relay/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 启动前校验必需配置，凭证缺失时直接退出
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	// 4. 初始化 Repository 与客户端
	conversationRepo := repository.NewConversationRepository(cfg.Relay.HistoryLimit)
	claudeClient := claude.NewClient(cfg.Claude)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)

	// 5. 初始化 Service (依赖注入)
	monitor := service.NewMonitor()
	relayService := service.NewRelayService(conversationRepo, claudeClient, monitor, cfg.Relay.ChunkSize)
	conversationService := service.NewConversationService(conversationRepo)

	// 6. 启动 Telegram 长轮询
	tgBot, err := bot.New(cfg.Telegram, cfg.Claude, relayService)
	if err != nil {
		log.Fatalf("Telegram bot 初始化失败: %v", err)
	}
	botCtx, cancelBot := context.WithCancel(context.Background())
	defer cancelBot()
	go tgBot.Run(botCtx)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", handler.NewAuthHandler(cfg.Admin, jwtManager).Login)
		}

		admin := apiV1.Group("/admin")
		adminHandler := handler.NewAdminHandler(conversationService)
		// 事件订阅走 WebSocket，token 经路径参数传入
		admin.GET("/events/:token", handler.NewEventsHandler(monitor, jwtManager).Handle)

		authed := admin.Group("/")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			authed.GET("/conversations", adminHandler.ListConversations)
			authed.GET("/conversations/:userId", adminHandler.GetConversation)
			authed.DELETE("/conversations/:userId", adminHandler.ClearConversation)
			authed.GET("/status", adminHandler.Status)
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("管理 API 启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 先停止接收 Telegram 更新
	cancelBot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
