package handler

import (
	"context"
	"net/http"

	"campus-walkways/db"
	"campus-walkways/editor"
	"campus-walkways/model"

	"github.com/gin-gonic/gin"
)

// CreateWalkwayRequest 绘制新步行道，多顶点折线会拆成若干条两点线段
type CreateWalkwayRequest struct {
	Name string             `json:"name"`
	Type string             `json:"type"`
	Line []model.Coordinate `json:"line" binding:"required,min=2"`
	Tags []string           `json:"tags"`
}

// UpdateWalkwayRequest 修改名称/类型/标签，未提供的字段保持不变
type UpdateWalkwayRequest struct {
	Name *string  `json:"name"`
	Type *string  `json:"type"`
	Tags []string `json:"tags"`
}

// BendRequest 弯折拖拽: 指定 segment_index 插入新弯折点，或指定 vertex 移动已有控制点
type BendRequest struct {
	SegmentIndex *int              `json:"segment_index"`
	Vertex       *int              `json:"vertex"`
	Point        *model.Coordinate `json:"point"`
}

// SplitRequest 拆分位置
type SplitRequest struct {
	Point *model.Coordinate `json:"point"`
}

// SelectRequest 框选 (bounds) 或多边形圈选 (polygon)，同时提供时按多边形处理
type SelectRequest struct {
	Bounds  *model.Bounds      `json:"bounds"`
	Polygon []model.Coordinate `json:"polygon"`
}

// ListWalkways 获取所有步行道
func (h *Handler) ListWalkways(c *gin.Context) {
	walkways, err := h.store.ListWalkways(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if walkways == nil {
		walkways = []model.Walkway{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(walkways),
		"walkways": walkways,
	})
}

// ExportGeoJSON 把步行道和要素导出为 FeatureCollection
func (h *Handler) ExportGeoJSON(c *gin.Context) {
	ctx := c.Request.Context()
	walkways, err := h.store.ListWalkways(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	features, err := h.store.ListFeatures(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, db.ExportFeatureCollection(walkways, features))
}

// CreateWalkway 保存用户绘制的折线
func (h *Handler) CreateWalkway(c *gin.Context) {
	var req CreateWalkwayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return
	}

	parts := editor.Decompose(req.Line, req.Name, req.Type)
	for i := range parts {
		parts[i].Tags = req.Tags
		if err := parts[i].Normalize().Validate(); err != nil {
			h.writeError(c, err)
			return
		}
	}

	saved := make([]model.Walkway, 0, len(parts))
	for _, w := range parts {
		s, err := h.store.SaveWalkway(c.Request.Context(), w)
		if err != nil {
			h.writeError(c, err)
			return
		}
		saved = append(saved, s)
	}
	h.logger.Info("walkways created", "count", len(saved), "name", req.Name)
	c.JSON(http.StatusCreated, gin.H{
		"count":    len(saved),
		"walkways": saved,
	})
}

// UpdateWalkway 修改名称、类型或标签
func (h *Handler) UpdateWalkway(c *gin.Context) {
	var req UpdateWalkwayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	w, err := h.store.GetWalkway(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if req.Name != nil {
		w = editor.Rename(w, *req.Name)
	}
	if req.Type != nil {
		w.Type = *req.Type
	}
	if req.Tags != nil {
		w.Tags = req.Tags
	}
	h.save(c, w)
}

// DeleteWalkway 删除一条步行道
func (h *Handler) DeleteWalkway(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteWalkway(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功", "id": id})
}

func (h *Handler) dragFor(w model.Walkway, req BendRequest) *editor.Drag {
	if req.Vertex != nil {
		return editor.NewMoveDrag(w, *req.Vertex, h.samples(), h.alpha())
	}
	return editor.NewBendDrag(w, *req.SegmentIndex, h.samples(), h.alpha())
}

// startDrag 解析请求并开始一次拖拽，失败时已经写好响应
func (h *Handler) startDrag(c *gin.Context) (*editor.Drag, model.Coordinate, bool) {
	var req BendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return nil, model.Coordinate{}, false
	}
	if req.Point == nil || (req.SegmentIndex == nil && req.Vertex == nil) {
		badRequest(c, "缺少 point 以及 segment_index 或 vertex")
		return nil, model.Coordinate{}, false
	}
	w, err := h.store.GetWalkway(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return nil, model.Coordinate{}, false
	}
	return h.dragFor(w, req), *req.Point, true
}

// PreviewBend 计算弯折预览，不写入存储
func (h *Handler) PreviewBend(c *gin.Context) {
	drag, p, ok := h.startDrag(c)
	if !ok {
		return
	}
	preview, err := drag.Preview(p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// CommitBend 按最终位置弯折并保存
func (h *Handler) CommitBend(c *gin.Context) {
	drag, p, ok := h.startDrag(c)
	if !ok {
		return
	}
	if _, err := drag.Preview(p); err != nil {
		h.writeError(c, err)
		return
	}
	saved, err := drag.Commit(c.Request.Context(), h.store)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Uncurve 去掉平滑，恢复控制折线
func (h *Handler) Uncurve(c *gin.Context) {
	w, err := h.store.GetWalkway(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.save(c, editor.Uncurve(w))
}

// Curve 打开平滑，对整条控制折线重新采样
func (h *Handler) Curve(c *gin.Context) {
	w, err := h.store.GetWalkway(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.save(c, editor.SetCurved(w, true, h.samples(), h.alpha()))
}

// Split 在指定点拆分步行道，点落在首尾端点上时不做任何修改
func (h *Handler) Split(c *gin.Context) {
	var req SplitRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validPoint(req.Point) {
		badRequest(c, "请求参数错误: 缺少合法的 point")
		return
	}
	ctx := c.Request.Context()
	w, err := h.store.GetWalkway(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	parts, err := editor.CommitSplit(ctx, h.store, w, *req.Point)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if parts == nil {
		c.JSON(http.StatusOK, gin.H{"split": false, "walkways": []model.Walkway{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"split": true, "walkways": parts})
}

func (h *Handler) selectIDs(ctx context.Context, req SelectRequest) ([]string, error) {
	walkways, err := h.store.ListWalkways(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Polygon) >= 3 {
		return editor.SelectByPolygon(walkways, req.Polygon), nil
	}
	return editor.SelectByRectangle(walkways, *req.Bounds), nil
}

func bindSelect(c *gin.Context) (SelectRequest, bool) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return req, false
	}
	if len(req.Polygon) < 3 && req.Bounds == nil {
		badRequest(c, "需要 bounds 或至少三个顶点的 polygon")
		return req, false
	}
	return req, true
}

// SelectWalkways 返回选区内的步行道 ID
func (h *Handler) SelectWalkways(c *gin.Context) {
	req, ok := bindSelect(c)
	if !ok {
		return
	}
	ids, err := h.selectIDs(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ids), "ids": ids})
}

// DeleteSelection 选中后逐条删除
func (h *Handler) DeleteSelection(c *gin.Context) {
	req, ok := bindSelect(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	ids, err := h.selectIDs(ctx, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	deleted, err := editor.DeleteSelection(ctx, h.store, ids)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "ids": ids})
}

func (h *Handler) save(c *gin.Context, w model.Walkway) {
	saved, err := h.store.SaveWalkway(c.Request.Context(), w)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
