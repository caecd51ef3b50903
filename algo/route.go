package algo

import (
	"campus-walkways/model"
	"campus-walkways/utils"
)

// 路线未找到的原因
const (
	ReasonStartTooFar = "start_too_far"
	ReasonEndTooFar   = "end_too_far"
	ReasonNoPath      = "no_path"
)

// RouteOptions 路线规划参数 (距离类参数单位为米)
type RouteOptions struct {
	MetersPerDegree      float64
	MaxSnapMeters        float64
	MergeToleranceMeters float64
	EntranceRadiusMeters float64
}

func (o RouteOptions) withDefaults() RouteOptions {
	if o.MetersPerDegree <= 0 {
		o.MetersPerDegree = utils.DefaultMetersPerDegree
	}
	if o.MaxSnapMeters <= 0 {
		o.MaxSnapMeters = 50
	}
	if o.MergeToleranceMeters <= 0 {
		o.MergeToleranceMeters = 2
	}
	if o.EntranceRadiusMeters <= 0 {
		o.EntranceRadiusMeters = 25
	}
	return o
}

// RouteEndpoint 路线起点/终点的吸附信息
type RouteEndpoint struct {
	Input      model.Coordinate `json:"input"`
	Snapped    model.Coordinate `json:"snapped"`
	SnapMeters float64          `json:"snap_meters"`
	Label      string           `json:"label,omitempty"`
	FeatureID  string           `json:"feature_id,omitempty"`
}

// RouteResult 路线规划结果
type RouteResult struct {
	Found     bool               `json:"found"`
	Reason    string             `json:"reason,omitempty"`
	Distance  float64            `json:"distance"` // 平面单位
	Meters    float64            `json:"meters"`
	Path      []model.Coordinate `json:"path,omitempty"`
	Start     *RouteEndpoint     `json:"start,omitempty"`
	End       *RouteEndpoint     `json:"end,omitempty"`
	Direction string             `json:"direction,omitempty"` // 第一段的大致方向
	Dropped   int                `json:"dropped,omitempty"`   // 构图时丢弃的非法步行道数量
	Summary   string             `json:"summary,omitempty"`
}

// PlanRoute 完整的路线规划流程:
// 从全部步行道构图 → 插入起点、终点 → Dijkstra → 还原坐标序列
func PlanRoute(walkways []model.Walkway, features []model.Feature, from, to model.Coordinate, opts RouteOptions) RouteResult {
	opts = opts.withDefaults()
	g := BuildGraph(walkways, BuildOptions{
		MergeTolerance: utils.FromMeters(opts.MergeToleranceMeters, opts.MetersPerDegree),
	})
	maxSnap := utils.FromMeters(opts.MaxSnapMeters, opts.MetersPerDegree)
	result := RouteResult{Dropped: len(g.Dropped)}

	start := InsertPoint(g, from, maxSnap)
	if start == nil {
		result.Reason = ReasonStartTooFar
		return result
	}
	result.Start = endpoint(start, from, features, opts)

	end := InsertPoint(g, to, maxSnap)
	if end == nil {
		result.Reason = ReasonEndTooFar
		return result
	}
	result.End = endpoint(end, to, features, opts)

	path := ShortestPath(g, start.Node, end.Node)
	if path == nil {
		result.Reason = ReasonNoPath
		return result
	}

	result.Found = true
	result.Distance = path.Distance
	result.Meters = utils.ToMeters(path.Distance, opts.MetersPerDegree)
	result.Path = g.Coordinates(path.Path)
	result.Summary = FormatPath(g, path, opts.MetersPerDegree)
	if len(result.Path) > 1 {
		result.Direction = utils.CompassDirection(utils.Bearing(result.Path[0], result.Path[1]))
	}
	return result
}

func endpoint(ins *InsertResult, input model.Coordinate, features []model.Feature, opts RouteOptions) *RouteEndpoint {
	ep := &RouteEndpoint{
		Input:      input,
		Snapped:    ins.Snapped,
		SnapMeters: utils.ToMeters(ins.Distance, opts.MetersPerDegree),
	}
	if f := NearestFeature(features, input, opts.EntranceRadiusMeters); f != nil {
		ep.Label = f.Name
		ep.FeatureID = f.ID
	}
	return ep
}
