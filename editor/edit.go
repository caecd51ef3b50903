// Package editor 维护步行道的控制折线与渲染几何，提供弯折、拆分、框选删除等编辑操作。
// 所有操作都返回新的记录，不修改入参；持久化通过 Store 完成。
package editor

import (
	"context"
	"errors"
	"fmt"

	"campus-walkways/algo"
	"campus-walkways/model"
	"campus-walkways/utils"

	"github.com/google/uuid"
)

var (
	ErrSegmentIndex = errors.New("线段序号超出范围")
	ErrInvalidBend  = errors.New("弯折点非法")
	ErrVertexIndex  = errors.New("控制点序号非法")
)

// coincideEpsilon 与已有顶点距离小于该值视为重合
const coincideEpsilon = 1e-9

// Store 编辑操作需要的持久化能力
type Store interface {
	SaveWalkway(ctx context.Context, w model.Walkway) (model.Walkway, error)
	DeleteWalkway(ctx context.Context, id string) error
}

// NewID 生成新的记录 ID
func NewID() string {
	return uuid.NewString()
}

// Bend 在第 segmentIndex 段控制线上插入弯折点
// 只对局部 [A, bend, B] 做 Catmull-Rom 采样，结果替换几何中 A 到 B 的那一段，其余线段保持不变
func Bend(w model.Walkway, segmentIndex int, bend model.Coordinate, samples int, alpha float64) (model.Walkway, error) {
	w = w.Clone().Normalize()
	if segmentIndex < 0 || segmentIndex >= len(w.Control)-1 {
		return w, fmt.Errorf("%w: %d (共 %d 段)", ErrSegmentIndex, segmentIndex, len(w.Control)-1)
	}
	a, b := w.Control[segmentIndex], w.Control[segmentIndex+1]
	if !bend.Finite() || !bend.InWorld() {
		return w, fmt.Errorf("%w: %v", ErrInvalidBend, bend)
	}
	if utils.Distance(bend, a) <= coincideEpsilon || utils.Distance(bend, b) <= coincideEpsilon {
		return w, fmt.Errorf("%w: 与线段端点重合", ErrInvalidBend)
	}

	geom, anchors := controlAnchors(w)
	local := CatmullRom([]model.Coordinate{a, bend, b}, samples, alpha)
	w.Geometry = splice(geom, anchors[segmentIndex], anchors[segmentIndex+1], local)

	control := make([]model.Coordinate, 0, len(w.Control)+1)
	control = append(control, w.Control[:segmentIndex+1]...)
	control = append(control, bend)
	control = append(control, w.Control[segmentIndex+1:]...)
	w.Control = control
	w.Curved = true
	return w, nil
}

// MoveControlPoint 移动一个内部控制点 (曲线上已有的弯折点)，端点不允许移动以免破坏拓扑
// 曲线只重采样与该点相邻的两段
func MoveControlPoint(w model.Walkway, index int, p model.Coordinate, samples int, alpha float64) (model.Walkway, error) {
	w = w.Clone().Normalize()
	if index <= 0 || index >= len(w.Control)-1 {
		return w, fmt.Errorf("%w: %d", ErrVertexIndex, index)
	}
	if !p.Finite() || !p.InWorld() {
		return w, fmt.Errorf("%w: %v", ErrInvalidBend, p)
	}
	geom, anchors := controlAnchors(w)
	w.Control[index] = p
	if !w.Curved {
		w.Geometry = model.CloneCoords(w.Control)
		return w, nil
	}
	local := CatmullRom([]model.Coordinate{w.Control[index-1], p, w.Control[index+1]}, samples, alpha)
	w.Geometry = splice(geom, anchors[index-1], anchors[index+1], local)
	return w, nil
}

// controlAnchors 返回几何以及每个控制点在几何中的下标
// 曲线精确经过控制点，按顺序向后查找即可；对不上时退回控制折线本身
func controlAnchors(w model.Walkway) ([]model.Coordinate, []int) {
	anchors := make([]int, len(w.Control))
	j := 0
	for i, c := range w.Control {
		for j < len(w.Geometry) && w.Geometry[j] != c {
			j++
		}
		if j == len(w.Geometry) {
			for k := range anchors {
				anchors[k] = k
			}
			return model.CloneCoords(w.Control), anchors
		}
		anchors[i] = j
		j++
	}
	return w.Geometry, anchors
}

// splice 用 local 替换 geom[from..to] (含两端)
func splice(geom []model.Coordinate, from, to int, local []model.Coordinate) []model.Coordinate {
	out := make([]model.Coordinate, 0, len(geom)-(to-from+1)+len(local))
	out = append(out, geom[:from]...)
	out = append(out, local...)
	out = append(out, geom[to+1:]...)
	return out
}

// Uncurve 丢弃采样几何，恢复为控制折线
func Uncurve(w model.Walkway) model.Walkway {
	w = w.Clone().Normalize()
	w.Geometry = model.CloneCoords(w.Control)
	w.Curved = false
	return w
}

// SetCurved 切换曲线开关，打开时对整条控制折线重新采样
func SetCurved(w model.Walkway, on bool, samples int, alpha float64) model.Walkway {
	if !on {
		return Uncurve(w)
	}
	w = w.Clone().Normalize()
	w.Geometry = CatmullRom(w.Control, samples, alpha)
	w.Curved = true
	return w
}

// Rename 修改显示名称
func Rename(w model.Walkway, name string) model.Walkway {
	w = w.Clone()
	w.Name = name
	return w
}

// Split 在点 p 处把一条步行道拆成两条独立记录，两条都获得新的 ID
// p 先投影到最近的几何线段上；与首尾端点重合时不拆分，返回 ok=false
// 与内部顶点重合时在该顶点处拆分。拆分后的两条均为直线 (控制折线取原几何)
func Split(w model.Walkway, p model.Coordinate) (first, second model.Walkway, ok bool) {
	w = w.Clone().Normalize()
	geom := w.Geometry
	if len(geom) < 2 || !p.Finite() {
		return w, w, false
	}

	seg, q := nearestSegment(geom, p)
	last := len(geom) - 1
	if utils.Distance(q, geom[0]) <= coincideEpsilon || utils.Distance(q, geom[last]) <= coincideEpsilon {
		return w, w, false
	}

	var before, after []model.Coordinate
	switch {
	case utils.Distance(q, geom[seg]) <= coincideEpsilon:
		before = model.CloneCoords(geom[:seg+1])
		after = model.CloneCoords(geom[seg:])
	case utils.Distance(q, geom[seg+1]) <= coincideEpsilon:
		before = model.CloneCoords(geom[:seg+2])
		after = model.CloneCoords(geom[seg+1:])
	default:
		before = append(model.CloneCoords(geom[:seg+1]), q)
		after = append([]model.Coordinate{q}, geom[seg+1:]...)
	}

	return splitPart(w, before), splitPart(w, after), true
}

func splitPart(orig model.Walkway, geom []model.Coordinate) model.Walkway {
	part := orig.Clone()
	part.ID = NewID()
	part.Geometry = geom
	part.Control = model.CloneCoords(geom)
	part.Curved = false
	part.SegmentIndex = nil
	return part
}

// nearestSegment 返回离 p 最近的线段序号和投影点
func nearestSegment(line []model.Coordinate, p model.Coordinate) (int, model.Coordinate) {
	best, bestDist := 0, -1.0
	var bestPoint model.Coordinate
	for i := 0; i+1 < len(line); i++ {
		q, _ := utils.ProjectPointOntoSegment(line[i], line[i+1], p)
		d := utils.Distance(q, p)
		if bestDist < 0 || d < bestDist {
			best, bestDist, bestPoint = i, d, q
		}
	}
	return best, bestPoint
}

// CommitSplit 拆分并持久化: 先写入两条新记录，再删除原记录
// 存储失败时原样返回错误，调用方需要重新拉取数据后再重试
func CommitSplit(ctx context.Context, store Store, w model.Walkway, p model.Coordinate) ([]model.Walkway, error) {
	first, second, ok := Split(w, p)
	if !ok {
		return nil, nil
	}
	saved := make([]model.Walkway, 0, 2)
	for _, part := range []model.Walkway{first, second} {
		s, err := store.SaveWalkway(ctx, part)
		if err != nil {
			return saved, err
		}
		saved = append(saved, s)
	}
	if err := store.DeleteWalkway(ctx, w.ID); err != nil {
		return saved, err
	}
	algo.Logger().Info("walkway split", "id", w.ID, "first", saved[0].ID, "second", saved[1].ID)
	return saved, nil
}

// Decompose 把用户绘制的多顶点折线拆成若干条两点线段
// 每条线段独立可编辑，共享同一个分组标记并记录序号
func Decompose(line []model.Coordinate, name, typ string) []model.Walkway {
	if len(line) <= 2 {
		return []model.Walkway{{
			ID:       NewID(),
			Name:     name,
			Type:     typ,
			Geometry: model.CloneCoords(line),
			Control:  model.CloneCoords(line),
		}}
	}
	group := NewID()
	out := make([]model.Walkway, 0, len(line)-1)
	for i := 0; i+1 < len(line); i++ {
		idx := i
		seg := []model.Coordinate{line[i], line[i+1]}
		out = append(out, model.Walkway{
			ID:           NewID(),
			Name:         name,
			Type:         typ,
			Geometry:     seg,
			Control:      model.CloneCoords(seg),
			Group:        group,
			SegmentIndex: &idx,
		})
	}
	return out
}
