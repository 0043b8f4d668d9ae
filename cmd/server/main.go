package main

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"sunotrack/internal/api"
	"sunotrack/internal/config"
	"sunotrack/internal/model"
	"sunotrack/internal/service"
	"sunotrack/internal/storage"
	"sunotrack/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed web/dist/index.html
var indexHTML string

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(repo)
	if err := st.Load(ctx, store.Seed{
		BaseURL:      cfg.SunoBaseURL,
		APIKey:       cfg.SunoAPIKey,
		PollInterval: cfg.PollInterval,
		AutoRename:   cfg.AutoRename,
	}); err != nil {
		logrus.WithError(err).Error("failed to load persisted state")
		return
	}

	backend, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	var archive *service.ArchiveService
	if backend != nil {
		archive = service.NewArchiveService(st, backend)
	}
	poller := service.NewPoller(st, archive)

	httpHandler := api.NewHTTPHandler(cfg, st, backend, poller)

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	apiGroup.GET("/settings", httpHandler.GetSettings)
	apiGroup.PUT("/settings", httpHandler.UpdateSettings)

	apiGroup.GET("/tasks", httpHandler.ListTasks)
	apiGroup.POST("/tasks", httpHandler.SubmitTask)
	apiGroup.POST("/tasks/refresh", httpHandler.RefreshTasks)
	apiGroup.DELETE("/tasks/:id", httpHandler.DeleteTask)
	apiGroup.POST("/tasks/:id/rename", httpHandler.RenameTask)
	apiGroup.POST("/tasks/:id/toggle", httpHandler.ToggleTask)

	apiGroup.GET("/history/creative", httpHandler.CreativeHistory)
	apiGroup.GET("/history/custom", httpHandler.CustomHistory)

	apiGroup.GET("/state/export", httpHandler.ExportState)
	apiGroup.POST("/state/import", httpHandler.ImportState)

	apiGroup.GET("/events", httpHandler.StreamEvents)

	if localProvider, ok := backend.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	//前端资源
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
	})

	// 启动轮询
	go poller.Run(ctx)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("服务器启动")
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  900 * time.Second,
		WriteTimeout: 900 * time.Second,
		IdleTimeout:  1200 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
