package handler

import (
	"net/http"

	"campus-walkways/model"

	"github.com/gin-gonic/gin"
)

// ListFeatures 获取所有建筑/房间/入口
func (h *Handler) ListFeatures(c *gin.Context) {
	features, err := h.store.ListFeatures(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if features == nil {
		features = []model.Feature{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(features),
		"features": features,
	})
}

// CreateFeature 新增要素
func (h *Handler) CreateFeature(c *gin.Context) {
	var f model.Feature
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if f.Geometry == nil || f.Geometry.Geometry() == nil {
		badRequest(c, "缺少要素几何")
		return
	}
	switch f.Kind {
	case model.FeatureBuilding, model.FeatureRoom, model.FeatureEntrance:
	case "":
		f.Kind = model.FeatureBuilding
	default:
		badRequest(c, "未知的要素类型: "+f.Kind)
		return
	}

	saved, err := h.store.SaveFeature(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteFeature 删除要素
func (h *Handler) DeleteFeature(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteFeature(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功", "id": id})
}
