package editor

import (
	"context"
	"errors"

	"campus-walkways/model"
)

var (
	ErrDragClosed    = errors.New("拖拽已结束")
	ErrNothingToSave = errors.New("没有可提交的预览")
)

// Drag 交互式拖拽的两阶段协议:
// Preview 每次指针移动时基于拖拽开始前的原始副本重新计算，结果不写入存储；
// Commit 只把最后一次预览写入存储；Cancel 放弃拖拽，不留下任何状态。
type Drag struct {
	original model.Walkway
	apply    func(model.Walkway, model.Coordinate) (model.Walkway, error)
	last     *model.Walkway
	closed   bool
}

// NewBendDrag 在第 segment 段上拖出一个新的弯折点
func NewBendDrag(w model.Walkway, segment, samples int, alpha float64) *Drag {
	return &Drag{
		original: w.Clone(),
		apply: func(orig model.Walkway, p model.Coordinate) (model.Walkway, error) {
			return Bend(orig, segment, p, samples, alpha)
		},
	}
}

// NewMoveDrag 拖动已有的内部控制点
func NewMoveDrag(w model.Walkway, vertex, samples int, alpha float64) *Drag {
	return &Drag{
		original: w.Clone(),
		apply: func(orig model.Walkway, p model.Coordinate) (model.Walkway, error) {
			return MoveControlPoint(orig, vertex, p, samples, alpha)
		},
	}
}

// Original 返回拖拽开始前的副本
func (d *Drag) Original() model.Walkway {
	return d.original.Clone()
}

// Preview 计算指针位于 p 时的预览结果
// 失败时清空上一次预览，此时 Commit 返回 ErrNothingToSave
func (d *Drag) Preview(p model.Coordinate) (model.Walkway, error) {
	if d.closed {
		return model.Walkway{}, ErrDragClosed
	}
	w, err := d.apply(d.original.Clone(), p)
	if err != nil {
		d.last = nil
		return model.Walkway{}, err
	}
	d.last = &w
	return w.Clone(), nil
}

// Commit 把最后一次预览写入存储并结束拖拽
func (d *Drag) Commit(ctx context.Context, store Store) (model.Walkway, error) {
	if d.closed {
		return model.Walkway{}, ErrDragClosed
	}
	if d.last == nil {
		return model.Walkway{}, ErrNothingToSave
	}
	saved, err := store.SaveWalkway(ctx, *d.last)
	if err != nil {
		return model.Walkway{}, err
	}
	d.closed = true
	return saved, nil
}

// Cancel 放弃拖拽
func (d *Drag) Cancel() {
	d.closed = true
	d.last = nil
}
