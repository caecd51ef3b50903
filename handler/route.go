package handler

import (
	"net/http"

	"campus-walkways/algo"
	"campus-walkways/model"
	"campus-walkways/utils"

	"github.com/gin-gonic/gin"
)

// RouteRequest 路线规划请求，坐标格式为 [lng, lat]
type RouteRequest struct {
	From *model.Coordinate `json:"from"`
	To   *model.Coordinate `json:"to"`
}

// SnapRequest 吸附探测请求
type SnapRequest struct {
	Point *model.Coordinate `json:"point"`
}

// SnapResponse 吸附探测结果
type SnapResponse struct {
	Found   bool             `json:"found"`
	Snapped model.Coordinate `json:"snapped"`
	Meters  float64          `json:"meters"`
	Split   bool             `json:"split"`
	Message string           `json:"message,omitempty"`
}

// NetworkResponse 当前路网的调试视图
type NetworkResponse struct {
	Nodes   []algo.Node             `json:"nodes"`
	Edges   []algo.Edge             `json:"edges"`
	Dropped []model.ValidationError `json:"dropped"`
}

func validPoint(p *model.Coordinate) bool {
	return p != nil && p.Finite() && p.InWorld()
}

// Route 路线规划接口
// 找不到路线不是错误，返回 200 和 found=false 以及原因
func (h *Handler) Route(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if !validPoint(req.From) || !validPoint(req.To) {
		badRequest(c, "起点或终点坐标非法")
		return
	}

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

	result := algo.PlanRoute(walkways, features, *req.From, *req.To, h.routeOptions())
	h.logger.Debug("route planned", "found", result.Found, "reason", result.Reason, "meters", result.Meters)
	c.JSON(http.StatusOK, result)
}

// Snap 返回坐标吸附到路网上的位置，不做路径搜索
func (h *Handler) Snap(c *gin.Context) {
	var req SnapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if !validPoint(req.Point) {
		badRequest(c, "坐标非法")
		return
	}

	walkways, err := h.store.ListWalkways(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	g := algo.BuildGraph(walkways, h.buildOptions())
	maxSnap := utils.FromMeters(h.cfg.SnapDistanceMeters, h.cfg.MetersPerDegree)
	ins := algo.InsertPoint(g, *req.Point, maxSnap)
	if ins == nil {
		c.JSON(http.StatusOK, SnapResponse{Found: false, Message: "离路网太远"})
		return
	}
	c.JSON(http.StatusOK, SnapResponse{
		Found:   true,
		Snapped: ins.Snapped,
		Meters:  utils.ToMeters(ins.Distance, h.cfg.MetersPerDegree),
		Split:   ins.Split,
	})
}

// Network 返回当前全部步行道构建出的节点、边和被丢弃的记录
func (h *Handler) Network(c *gin.Context) {
	walkways, err := h.store.ListWalkways(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	g := algo.BuildGraph(walkways, h.buildOptions())
	resp := NetworkResponse{
		Nodes:   g.Nodes,
		Edges:   g.Edges,
		Dropped: g.Dropped,
	}
	if resp.Nodes == nil {
		resp.Nodes = []algo.Node{}
	}
	if resp.Edges == nil {
		resp.Edges = []algo.Edge{}
	}
	if resp.Dropped == nil {
		resp.Dropped = []model.ValidationError{}
	}
	c.JSON(http.StatusOK, resp)
}
