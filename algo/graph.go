package algo

import (
	"sort"

	"campus-walkways/model"
	"campus-walkways/utils"
)

// Node 图中的顶点，Index 是首次出现时分配的稳定下标
type Node struct {
	Index int              `json:"index"`
	Coord model.Coordinate `json:"coord"`
}

// Neighbor 邻接表中的一项
type Neighbor struct {
	Node   int     `json:"node"`
	Weight float64 `json:"weight"`
}

// Edge 无向边，保留两个端点坐标供插点时做几何投影
type Edge struct {
	A       int              `json:"a"`
	B       int              `json:"b"`
	From    model.Coordinate `json:"from"`
	To      model.Coordinate `json:"to"`
	Weight  float64          `json:"weight"`
	Walkway string           `json:"walkway,omitempty"` // 来源步行道 ID
	Bridge  bool             `json:"bridge,omitempty"`  // 合并容差内补上的连接边
}

// Graph 图结构，用于路径规划
// 每次查询或编辑后都从全部步行道重新构建，不做持久化
type Graph struct {
	Nodes   []Node                   // 节点列表 (下标即 Index)
	AdjList [][]Neighbor             // 邻接表 (Index -> 邻居列表)
	Edges   []Edge                   // 边列表 (用于几何查询)
	Dropped []model.ValidationError  // 构建时被丢弃的非法记录
	index   map[model.Coordinate]int // 坐标 -> 节点下标 (精确匹配)
}

// NewGraph 创建一个空的图
func NewGraph() *Graph {
	return &Graph{
		index: make(map[model.Coordinate]int),
	}
}

// BuildOptions 构图参数
type BuildOptions struct {
	// MergeTolerance 端点合并容差 (平面单位)，小于该距离的节点之间补一条连接边
	// 为 0 时使用约 2 米对应的默认值
	MergeTolerance float64
}

// DefaultMergeTolerance 约 2 米
var DefaultMergeTolerance = utils.FromMeters(2, utils.DefaultMetersPerDegree)

// vertexEpsilon 同一条线上距离小于该值的插入点视为重复
const vertexEpsilon = 1e-12

// split 线段上的一个待插入点
type split struct {
	t float64
	p model.Coordinate
}

// ValidWalkways 补全默认值并校验，非法记录被丢弃而不是中止整个构建
func ValidWalkways(walkways []model.Walkway) ([]model.Walkway, []model.ValidationError) {
	valid := make([]model.Walkway, 0, len(walkways))
	var dropped []model.ValidationError
	for _, w := range walkways {
		w = w.Normalize()
		if err := w.Validate(); err != nil {
			ve, ok := err.(*model.ValidationError)
			if !ok {
				ve = &model.ValidationError{ID: w.ID, Reason: err.Error()}
			}
			Logger().Warn("dropping invalid walkway", "id", w.ID, "reason", ve.Reason)
			dropped = append(dropped, *ve)
			continue
		}
		valid = append(valid, w)
	}
	return valid, dropped
}

// BuildGraph 把一组独立绘制的步行道构建成拓扑正确的路网
//  1. 两两比较不同步行道的线段，求出所有交点 (O(S²)，校园规模可以接受)
//  2. 把交点按参数顺序插入各自的线段，得到细分后的顶点序列
//  3. 按坐标精确去重得到节点，相邻顶点之间连边
//  4. 距离小于合并容差的节点之间补一条连接边，弥补浮点误差造成的断开
func BuildGraph(walkways []model.Walkway, opts BuildOptions) *Graph {
	tol := opts.MergeTolerance
	if tol <= 0 {
		tol = DefaultMergeTolerance
	}

	valid, dropped := ValidWalkways(walkways)
	g := NewGraph()
	g.Dropped = dropped

	// splits[i][s] 是第 i 条步行道第 s 段上的交点
	splits := make([][][]split, len(valid))
	for i, w := range valid {
		splits[i] = make([][]split, len(w.Geometry)-1)
	}

	for i := 0; i < len(valid); i++ {
		gi := valid[i].Geometry
		for j := i + 1; j < len(valid); j++ {
			gj := valid[j].Geometry
			for si := 0; si+1 < len(gi); si++ {
				for sj := 0; sj+1 < len(gj); sj++ {
					for _, x := range utils.SegmentIntersection(gi[si], gi[si+1], gj[sj], gj[sj+1]) {
						splits[i][si] = append(splits[i][si], split{t: x.TAB, p: x.Point})
						splits[j][sj] = append(splits[j][sj], split{t: x.TCD, p: x.Point})
					}
				}
			}
		}
	}

	for i, w := range valid {
		refined := refine(w.Geometry, splits[i])
		for k := 1; k < len(refined); k++ {
			a := g.nodeFor(refined[k-1])
			b := g.nodeFor(refined[k])
			if a == b {
				continue
			}
			g.addEdge(Edge{
				A:       a,
				B:       b,
				From:    refined[k-1],
				To:      refined[k],
				Weight:  utils.Distance(refined[k-1], refined[k]),
				Walkway: w.ID,
			})
		}
	}

	bridges := g.consolidate(tol)

	Logger().Debug("walkway graph built",
		"walkways", len(valid),
		"dropped", len(dropped),
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"bridges", bridges)
	return g
}

// refine 按参数顺序把交点插入每一段，相同位置的重复点被抑制
func refine(line []model.Coordinate, segSplits [][]split) []model.Coordinate {
	out := []model.Coordinate{line[0]}
	push := func(p model.Coordinate) {
		last := out[len(out)-1]
		if p == last || utils.Distance(p, last) < vertexEpsilon {
			return
		}
		out = append(out, p)
	}
	for s := 0; s+1 < len(line); s++ {
		ss := segSplits[s]
		sort.SliceStable(ss, func(a, b int) bool { return ss[a].t < ss[b].t })
		for _, x := range ss {
			if x.p == line[s+1] {
				continue
			}
			push(x.p)
		}
		push(line[s+1])
	}
	return out
}

// consolidate 合并容差内的节点之间补连接边 (不合并节点身份)
func (g *Graph) consolidate(tol float64) int {
	added := 0
	n := len(g.Nodes)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			d := utils.Distance(g.Nodes[a].Coord, g.Nodes[b].Coord)
			if d >= tol || g.adjacent(a, b) {
				continue
			}
			g.addEdge(Edge{
				A:      a,
				B:      b,
				From:   g.Nodes[a].Coord,
				To:     g.Nodes[b].Coord,
				Weight: d,
				Bridge: true,
			})
			added++
		}
	}
	return added
}

// nodeFor 返回坐标对应的节点下标，不存在时分配新节点
func (g *Graph) nodeFor(c model.Coordinate) int {
	if idx, ok := g.index[c]; ok {
		return idx
	}
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Index: idx, Coord: c})
	g.AdjList = append(g.AdjList, nil)
	g.index[c] = idx
	return idx
}

// NodeAt 按精确坐标查找节点
func (g *Graph) NodeAt(c model.Coordinate) (int, bool) {
	idx, ok := g.index[c]
	return idx, ok
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
	g.AdjList[e.A] = append(g.AdjList[e.A], Neighbor{Node: e.B, Weight: e.Weight})
	g.AdjList[e.B] = append(g.AdjList[e.B], Neighbor{Node: e.A, Weight: e.Weight})
}

// removeEdge 删除边列表中的第 i 条边以及对应的邻接项
func (g *Graph) removeEdge(i int) Edge {
	e := g.Edges[i]
	g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
	g.AdjList[e.A] = removeNeighbor(g.AdjList[e.A], e.B, e.Weight)
	g.AdjList[e.B] = removeNeighbor(g.AdjList[e.B], e.A, e.Weight)
	return e
}

func removeNeighbor(list []Neighbor, node int, weight float64) []Neighbor {
	for i, nb := range list {
		if nb.Node == node && nb.Weight == weight {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (g *Graph) adjacent(a, b int) bool {
	for _, nb := range g.AdjList[a] {
		if nb.Node == b {
			return true
		}
	}
	return false
}

// GetNeighbors 获取指定节点的邻居
func (g *Graph) GetNeighbors(node int) []Neighbor {
	if node < 0 || node >= len(g.AdjList) {
		return nil
	}
	return g.AdjList[node]
}

// Valid 判断节点下标是否合法
func (g *Graph) Valid(node int) bool {
	return node >= 0 && node < len(g.Nodes)
}

// Coordinates 把节点下标序列转换为坐标序列
func (g *Graph) Coordinates(path []int) []model.Coordinate {
	out := make([]model.Coordinate, 0, len(path))
	for _, idx := range path {
		out = append(out, g.Nodes[idx].Coord)
	}
	return out
}
