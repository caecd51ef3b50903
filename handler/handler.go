package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"campus-walkways/algo"
	"campus-walkways/config"
	"campus-walkways/db"
	"campus-walkways/editor"
	"campus-walkways/model"
	"campus-walkways/utils"

	"github.com/gin-gonic/gin"
)

// Handler 持有 HTTP 接口需要的依赖
// 路网图不常驻内存，每个请求从存储中的全部步行道重新构建
type Handler struct {
	store  db.Store
	cfg    config.Config
	logger *slog.Logger
	auth   *Auth
}

// New 创建 Handler
func New(store db.Store, cfg config.Config, auth *Auth, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, cfg: cfg, logger: logger, auth: auth}
}

// Routes 在 /api 路由组上注册全部接口
func (h *Handler) Routes(api *gin.RouterGroup) {
	// 公开接口 (无需认证)
	api.POST("/login", h.auth.Login)
	api.POST("/route", h.Route)
	api.POST("/snap", h.Snap)
	api.GET("/network", h.Network)
	api.GET("/walkways", h.ListWalkways)
	api.GET("/walkways.geojson", h.ExportGeoJSON)
	api.GET("/features", h.ListFeatures)

	// 编辑接口 (需要管理员 Token)
	authorized := api.Group("/")
	authorized.Use(h.auth.Middleware())
	{
		authorized.POST("/register", h.auth.Register)

		authorized.POST("/walkways", h.CreateWalkway)
		authorized.POST("/walkways/select", h.SelectWalkways)
		authorized.POST("/walkways/delete-selection", h.DeleteSelection)
		authorized.PUT("/walkways/:id", h.UpdateWalkway)
		authorized.DELETE("/walkways/:id", h.DeleteWalkway)
		authorized.POST("/walkways/:id/bend/preview", h.PreviewBend)
		authorized.POST("/walkways/:id/bend", h.CommitBend)
		authorized.POST("/walkways/:id/uncurve", h.Uncurve)
		authorized.POST("/walkways/:id/curve", h.Curve)
		authorized.POST("/walkways/:id/split", h.Split)

		authorized.POST("/features", h.CreateFeature)
		authorized.DELETE("/features/:id", h.DeleteFeature)
	}
}

func (h *Handler) routeOptions() algo.RouteOptions {
	return algo.RouteOptions{
		MetersPerDegree:      h.cfg.MetersPerDegree,
		MaxSnapMeters:        h.cfg.SnapDistanceMeters,
		MergeToleranceMeters: h.cfg.MergeToleranceMeters,
		EntranceRadiusMeters: h.cfg.EntranceRadiusMeters,
	}
}

func (h *Handler) buildOptions() algo.BuildOptions {
	return algo.BuildOptions{
		MergeTolerance: utils.FromMeters(h.cfg.MergeToleranceMeters, h.cfg.MetersPerDegree),
	}
}

func (h *Handler) samples() int {
	if h.cfg.CurveSamples < 1 {
		return editor.DefaultSamples
	}
	return h.cfg.CurveSamples
}

func (h *Handler) alpha() float64 {
	if h.cfg.CurveAlpha <= 0 {
		return editor.DefaultAlpha
	}
	return h.cfg.CurveAlpha
}

// writeError 按错误类型映射 HTTP 状态码
// 校验失败 400，记录不存在 404，存储失败 500
func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, editor.ErrSegmentIndex),
		errors.Is(err, editor.ErrInvalidBend),
		errors.Is(err, editor.ErrVertexIndex),
		errors.Is(err, editor.ErrNothingToSave):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误: " + err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
