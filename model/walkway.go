package model

import (
	"fmt"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Walkway 对应一条步行道记录 (持久化)
// Geometry 是渲染用的几何 (可能是平滑曲线)，Control 是未平滑的控制折线
type Walkway struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	Type         string       `json:"type,omitempty"` // 如: "path", "stairs", "bridge"
	Geometry     []Coordinate `json:"geometry"`
	Control      []Coordinate `json:"control,omitempty"`
	Curved       bool         `json:"curved"`
	Group        string       `json:"group,omitempty"`         // 同一次绘制拆分出来的线段共享的分组标记
	SegmentIndex *int         `json:"segment_index,omitempty"` // 在分组中的序号
	Tags         []string     `json:"tags,omitempty"`
}

// Normalize 补全默认值: Control 缺省时等于 Geometry，直线时强制 Geometry == Control
func (w Walkway) Normalize() Walkway {
	if len(w.Control) < 2 {
		w.Control = CloneCoords(w.Geometry)
	}
	if !w.Curved {
		w.Geometry = CloneCoords(w.Control)
	}
	return w
}

// Clone 深拷贝，拖拽预览等场景需要不共享底层数组
func (w Walkway) Clone() Walkway {
	w.Geometry = CloneCoords(w.Geometry)
	w.Control = CloneCoords(w.Control)
	w.Tags = slices.Clone(w.Tags)
	if w.SegmentIndex != nil {
		idx := *w.SegmentIndex
		w.SegmentIndex = &idx
	}
	return w
}

// Validate 校验几何: 至少两个点，坐标有限且在经纬度范围内，长度不为零
func (w Walkway) Validate() error {
	if err := validateLine(w.ID, "geometry", w.Geometry); err != nil {
		return err
	}
	if len(w.Control) > 0 {
		if err := validateLine(w.ID, "control", w.Control); err != nil {
			return err
		}
	}
	return nil
}

func validateLine(id, field string, line []Coordinate) error {
	if len(line) < 2 {
		return &ValidationError{ID: id, Reason: fmt.Sprintf("%s 至少需要 2 个点，实际 %d", field, len(line))}
	}
	distinct := false
	for i, c := range line {
		if !c.Finite() {
			return &ValidationError{ID: id, Reason: fmt.Sprintf("%s 第 %d 个点不是有限数", field, i)}
		}
		if !c.InWorld() {
			return &ValidationError{ID: id, Reason: fmt.Sprintf("%s 第 %d 个点超出经纬度范围: %v", field, i, c)}
		}
		if c != line[0] {
			distinct = true
		}
	}
	if !distinct {
		return &ValidationError{ID: id, Reason: field + " 长度为零"}
	}
	return nil
}

// Feature 建筑/房间/入口等要素，只用于入口命名，不参与路网拓扑
type Feature struct {
	ID       string            `json:"id"`
	Kind     string            `json:"kind"` // "building", "room", "entrance"
	Name     string            `json:"name"`
	Geometry *geojson.Geometry `json:"geometry"`
}

// Clone 深拷贝几何，存储层不与调用方共享指针
func (f Feature) Clone() Feature {
	if f.Geometry != nil && f.Geometry.Geometry() != nil {
		f.Geometry = geojson.NewGeometry(orb.Clone(f.Geometry.Geometry()))
	}
	return f
}

const (
	FeatureBuilding = "building"
	FeatureRoom     = "room"
	FeatureEntrance = "entrance"
)

// Operator 可以编辑路网的管理员
type Operator struct {
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt 哈希
	Email    string `json:"email,omitempty"`
}

// ValidationError 记录被丢弃的非法记录
type ValidationError struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return "非法步行道: " + e.Reason
	}
	return fmt.Sprintf("非法步行道 %s: %s", e.ID, e.Reason)
}
