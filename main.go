package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"campus-walkways/algo"
	"campus-walkways/config"
	"campus-walkways/db"
	"campus-walkways/handler"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	algo.SetLogger(logger)

	fmt.Println("=== 校园步行道路网服务 ===")

	// 1. 读取配置
	cfg := config.Load(logger)

	// 2. 初始化存储
	// STORE=memory 时不需要数据库，适合本地调试
	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("初始化存储失败", "err", err)
		os.Exit(1)
	}

	// 3. 第一次运行时从 GeoJSON 文件导入初始数据
	if err := db.SeedIfEmpty(context.Background(), store, cfg.SeedFile, logger); err != nil {
		logger.Error("导入初始数据失败", "file", cfg.SeedFile, "err", err)
		os.Exit(1)
	}

	// 4. 认证模块
	auth, err := handler.NewAuth(cfg.JWTSecret, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		logger.Error("初始化认证失败", "err", err)
		os.Exit(1)
	}

	// 5. 初始化 Gin 引擎并配置路由
	r := gin.Default()
	setupRoutes(r, handler.New(store, cfg, auth, logger))

	// 6. 启动服务器
	logger.Info("服务器启动中", "addr", "http://localhost:"+cfg.Port, "store", cfg.Store)
	fmt.Println("API 文档:")
	fmt.Println("  - POST   /api/login                     - 管理员登录")
	fmt.Println("  - POST   /api/route                     - 路线规划")
	fmt.Println("  - POST   /api/snap                      - 坐标吸附")
	fmt.Println("  - GET    /api/network                   - 当前路网")
	fmt.Println("  - GET    /api/walkways                  - 获取所有步行道")
	fmt.Println("  - GET    /api/walkways.geojson          - 导出 GeoJSON")
	fmt.Println("  - POST   /api/walkways                  - 绘制步行道 (需登录)")
	fmt.Println("  - POST   /api/walkways/:id/bend         - 弯折 (需登录)")
	fmt.Println("  - POST   /api/walkways/:id/split        - 拆分 (需登录)")
	fmt.Println("  - POST   /api/walkways/delete-selection - 框选删除 (需登录)")
	fmt.Println("\n按 Ctrl+C 退出")

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("服务器启动失败", "err", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config, logger *slog.Logger) (db.Store, error) {
	if cfg.Store == "memory" {
		return db.NewMemoryStore(), nil
	}
	conn, err := db.Open(cfg.DB.DSN(), cfg.DB.MaxRetries, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("数据库连接成功", "host", cfg.DB.Host, "db", cfg.DB.Name)
	return db.NewGormStore(conn), nil
}

// setupRoutes 配置路由
func setupRoutes(r *gin.Engine, h *handler.Handler) {
	// CORS 跨域中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})

	h.Routes(r.Group("/api"))
}
