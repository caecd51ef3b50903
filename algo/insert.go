package algo

import (
	"math"

	"campus-walkways/model"
	"campus-walkways/utils"
)

// coincideEpsilon 投影点与边端点的距离小于该值时直接复用端点
const coincideEpsilon = 1e-9

// InsertResult 插点结果
type InsertResult struct {
	Node     int              `json:"node"`     // 插入或复用的节点下标
	Snapped  model.Coordinate `json:"snapped"`  // 投影到路网上的坐标
	Distance float64          `json:"distance"` // 原始坐标到路网的平面距离
	Split    bool             `json:"split"`    // 是否拆分了一条边
}

// NearestEdge 扫描所有边，返回离 c 最近的边下标、投影点和距离
// 图中没有边时返回 -1
func (g *Graph) NearestEdge(c model.Coordinate) (int, model.Coordinate, float64, float64) {
	best := -1
	bestDist := math.Inf(1)
	var bestPoint model.Coordinate
	bestT := 0.0
	for i, e := range g.Edges {
		p, t := utils.ProjectPointOntoSegment(e.From, e.To, c)
		d := utils.Distance(p, c)
		if d < bestDist {
			best, bestDist, bestPoint, bestT = i, d, p, t
		}
	}
	return best, bestPoint, bestDist, bestT
}

// InsertPoint 把任意坐标吸附到最近的边上
// 超出 maxSnapDistance 时返回 nil (调用方提示"离路网太远")
// 投影点与边端点重合时复用端点，否则拆分该边并插入新节点
// 图会被就地修改
func InsertPoint(g *Graph, c model.Coordinate, maxSnapDistance float64) *InsertResult {
	if g == nil || !c.Finite() {
		return nil
	}
	ei, p, d, t := g.NearestEdge(c)
	if ei < 0 || d > maxSnapDistance {
		return nil
	}
	e := g.Edges[ei]

	switch {
	case t <= 0 || utils.Distance(p, e.From) <= coincideEpsilon:
		return &InsertResult{Node: e.A, Snapped: e.From, Distance: d}
	case t >= 1 || utils.Distance(p, e.To) <= coincideEpsilon:
		return &InsertResult{Node: e.B, Snapped: e.To, Distance: d}
	}
	if idx, ok := g.NodeAt(p); ok {
		return &InsertResult{Node: idx, Snapped: p, Distance: d}
	}

	g.removeEdge(ei)
	n := g.nodeFor(p)
	g.addEdge(Edge{
		A:       e.A,
		B:       n,
		From:    e.From,
		To:      p,
		Weight:  utils.Distance(e.From, p),
		Walkway: e.Walkway,
		Bridge:  e.Bridge,
	})
	g.addEdge(Edge{
		A:       n,
		B:       e.B,
		From:    p,
		To:      e.To,
		Weight:  utils.Distance(p, e.To),
		Walkway: e.Walkway,
		Bridge:  e.Bridge,
	})

	Logger().Debug("point inserted", "node", n, "edge", ei, "walkway", e.Walkway)
	return &InsertResult{Node: n, Snapped: p, Distance: d, Split: true}
}
