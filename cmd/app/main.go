package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"linktrace-go/internal/dto"
	"linktrace-go/internal/handler"
	"linktrace-go/internal/i18n"
	"linktrace-go/internal/middleware"
	"linktrace-go/internal/repository"
	"linktrace-go/internal/service"
	"linktrace-go/pkg/logging"
)

func initConfig() {
	wd, _ := os.Getwd()
	log.Printf("Loading config from: %s/config.yaml", wd)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	// 允许 LINKTRACE_DB_DSN 这类环境变量覆盖
	viper.SetEnvPrefix("LINKTRACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
}

func startServer(r *gin.Engine) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := repository.RedisPool.Close(); err != nil {
		logging.Logger.Warn("Redis pool close failed", zap.Error(err))
	}

	logging.Logger.Info("Server exiting")
}

func main() {
	initConfig()

	// 初始化日志系统
	logging.InitLoggerFromConfig()
	logging.Logger.Info("Application started")

	// 数据库与缓存：建表迁移必须在接收流量之前完成
	repository.InitDB(logging.Logger, logging.AtomicLevel)
	repository.InitRedis()

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		panic(err)
	}

	// 注册自定义 binding 校验
	if err := dto.RegisterValidations(); err != nil {
		logging.Logger.Fatal("Failed to register validations", zap.Error(err))
	}

	store := repository.NewStore(repository.DB)
	linkSvc := service.NewLinkService(store, repository.RedisPool)
	clickSvc := service.NewClickService(store)
	geoSvc := service.NewGeoService(repository.RedisPool)
	statsSvc := service.NewStatsService(store, repository.RedisPool)
	authSvc := service.NewAuthService()

	h := handler.New(linkSvc, clickSvc, geoSvc, statsSvc, authSvc)

	r := gin.New()
	r.Use(gin.Recovery())

	// 注册全局错误中间件
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logging.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(bundle))

	r.GET("/health", h.HealthHandler)
	r.POST("/login", h.LoginHandler)
	r.POST("/logout", h.LogoutHandler)
	r.POST("/track-fingerprint/:clickId", h.TrackFingerprintHandler)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(authSvc))
	{
		api.POST("/links", h.CreateLinkHandler)
		api.GET("/links", h.ListLinksHandler)
		api.GET("/links/:id/clicks", h.ListClicksHandler)
		api.GET("/links/:id/stats", h.GetStatsHandler)
	}

	// 未匹配路径按短码重定向处理
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusNotFound)
			return
		}
		h.RedirectHandler(c)
	})

	c := cron.New()

	// 定时任务：每十分钟把 Redis 计数器落库
	_, addErr := c.AddFunc("*/10 * * * *", func() {
		if err := statsSvc.FlushDailyStats(context.Background()); err != nil {
			logging.Logger.Error("Failed to flush daily stats via cron job", zap.Error(err))
		}
	})
	if addErr != nil {
		logging.Logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}
	c.Start()

	startServer(r)
}
