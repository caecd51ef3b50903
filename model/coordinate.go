package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coordinate 代表一个经纬度点 (经度, 纬度)
// 在校园尺度内按平面坐标处理，JSON 中编码为 GeoJSON 风格的 [lng, lat]
type Coordinate struct {
	Lng float64 // 经度 (x)
	Lat float64 // 纬度 (y)
}

// Pt 构造一个坐标
func Pt(lng, lat float64) Coordinate {
	return Coordinate{Lng: lng, Lat: lat}
}

// Finite 判断两个分量是否都是有限数
func (c Coordinate) Finite() bool {
	return !math.IsNaN(c.Lng) && !math.IsNaN(c.Lat) &&
		!math.IsInf(c.Lng, 0) && !math.IsInf(c.Lat, 0)
}

// InWorld 判断坐标是否在经纬度合法范围内
func (c Coordinate) InWorld() bool {
	return c.Lng >= -180 && c.Lng <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Orb 转换为 orb.Point
func (c Coordinate) Orb() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// FromOrb 从 orb.Point 转换
func FromOrb(p orb.Point) Coordinate {
	return Coordinate{Lng: p.X(), Lat: p.Y()}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("[%g, %g]", c.Lng, c.Lat)
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lng, c.Lat})
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("坐标格式错误: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("坐标必须是 [lng, lat]，实际长度 %d", len(pair))
	}
	c.Lng, c.Lat = pair[0], pair[1]
	return nil
}

// Bounds 矩形范围 (用于框选)
type Bounds struct {
	Min Coordinate `json:"min"`
	Max Coordinate `json:"max"`
}

// Ring 返回矩形的闭合环 (逆时针)
func (b Bounds) Ring() []Coordinate {
	return []Coordinate{
		b.Min,
		{Lng: b.Max.Lng, Lat: b.Min.Lat},
		b.Max,
		{Lng: b.Min.Lng, Lat: b.Max.Lat},
		b.Min,
	}
}

// Normalize 保证 Min <= Max (用户可能从任意角开始拖拽)
func (b Bounds) Normalize() Bounds {
	return Bounds{
		Min: Coordinate{Lng: math.Min(b.Min.Lng, b.Max.Lng), Lat: math.Min(b.Min.Lat, b.Max.Lat)},
		Max: Coordinate{Lng: math.Max(b.Min.Lng, b.Max.Lng), Lat: math.Max(b.Min.Lat, b.Max.Lat)},
	}
}

// CloneCoords 复制坐标切片，避免共享底层数组
func CloneCoords(cs []Coordinate) []Coordinate {
	if cs == nil {
		return nil
	}
	out := make([]Coordinate, len(cs))
	copy(out, cs)
	return out
}
