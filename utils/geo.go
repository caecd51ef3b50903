package utils

import (
	"math"
	"sort"

	"campus-walkways/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EarthRadius WGS84 参考椭球长半轴 (米)
const EarthRadius = 6378137.0

// DefaultMetersPerDegree 校园纬度附近 1 度对应的近似地面距离 (米)
const DefaultMetersPerDegree = 111320.0

// Epsilon 分母下限，防止除零
const Epsilon = 1e-12

// DegreesToRadians 角度转弧度
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistance Haversine 公式 (直接计算两点间球面距离)
// 用于入口命名等需要真实地面距离的场景
func HaversineDistance(p1, p2 model.Coordinate) float64 {
	lat1 := DegreesToRadians(p1.Lat)
	lon1 := DegreesToRadians(p1.Lng)
	lat2 := DegreesToRadians(p2.Lat)
	lon2 := DegreesToRadians(p2.Lng)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	// a = sin²(Δlat/2) + cos(lat1) * cos(lat2) * sin²(Δlon/2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// c = 2 * atan2(√a, √(1-a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// Bearing 从 p1 指向 p2 的方位角 (度, 正北为 0, 顺时针)
func Bearing(p1, p2 model.Coordinate) float64 {
	lat1 := DegreesToRadians(p1.Lat)
	lat2 := DegreesToRadians(p2.Lat)
	dLon := DegreesToRadians(p2.Lng - p1.Lng)
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// CompassDirection 把方位角转换为八方位名称
func CompassDirection(bearing float64) string {
	names := []string{"北", "东北", "东", "东南", "南", "西南", "西", "西北"}
	idx := int(math.Floor(math.Mod(bearing+22.5, 360) / 45))
	return names[idx%8]
}

// Distance 平面欧氏距离 (单位与坐标相同，即"度")
// 校园范围很小，按局部平面处理
func Distance(p, q model.Coordinate) float64 {
	return math.Hypot(q.Lng-p.Lng, q.Lat-p.Lat)
}

// ToMeters 把平面距离按固定比例换算成米
func ToMeters(d, metersPerDegree float64) float64 {
	return d * metersPerDegree
}

// FromMeters 把米换算回平面距离
func FromMeters(m, metersPerDegree float64) float64 {
	if metersPerDegree <= 0 {
		metersPerDegree = DefaultMetersPerDegree
	}
	return m / metersPerDegree
}

// LineLength 折线的平面长度
func LineLength(line []model.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += Distance(line[i-1], line[i])
	}
	return total
}

// Lerp 线段 AB 上参数 t 处的点
func Lerp(a, b model.Coordinate, t float64) model.Coordinate {
	return model.Coordinate{
		Lng: a.Lng + (b.Lng-a.Lng)*t,
		Lat: a.Lat + (b.Lat-a.Lat)*t,
	}
}

// ProjectPointOntoSegment 求线段 AB 上离 P 最近的点以及参数 t ∈ [0,1]
// t 被截断在端点处，不会外推到 A、B 之外
func ProjectPointOntoSegment(a, b, p model.Coordinate) (model.Coordinate, float64) {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat
	den := dx*dx + dy*dy
	if den < Epsilon*Epsilon {
		den = Epsilon * Epsilon
	}
	t := ((p.Lng-a.Lng)*dx + (p.Lat-a.Lat)*dy) / den
	switch {
	case t <= 0:
		return a, 0
	case t >= 1:
		return b, 1
	}
	return Lerp(a, b, t), t
}

// Intersection 两条线段的交点及其在两条线段上的参数
type Intersection struct {
	Point model.Coordinate
	TAB   float64
	TCD   float64
}

// endpointTolerance 交点参数距离端点小于该值时视为端点本身
const endpointTolerance = 1e-9

// SegmentIntersection 计算线段 AB 与 CD 的交点
// 平行或共线重叠时视为没有有限交点，返回空
// 交点落在某个端点上时直接返回该端点坐标，保证两条线得到完全相同的键
func SegmentIntersection(a, b, c, d model.Coordinate) []Intersection {
	rx, ry := b.Lng-a.Lng, b.Lat-a.Lat
	sx, sy := d.Lng-c.Lng, d.Lat-c.Lat
	den := rx*sy - ry*sx
	if math.Abs(den) < Epsilon*Epsilon {
		return nil
	}
	qx, qy := c.Lng-a.Lng, c.Lat-a.Lat
	t := (qx*sy - qy*sx) / den
	u := (qx*ry - qy*rx) / den
	if t < -endpointTolerance || t > 1+endpointTolerance || u < -endpointTolerance || u > 1+endpointTolerance {
		return nil
	}
	t = clamp01(t)
	u = clamp01(u)

	var p model.Coordinate
	switch {
	case u <= endpointTolerance:
		p, u = c, 0
	case u >= 1-endpointTolerance:
		p, u = d, 1
	case t <= endpointTolerance:
		p, t = a, 0
	case t >= 1-endpointTolerance:
		p, t = b, 1
	default:
		p = Lerp(a, b, t)
	}
	if p == a {
		t = 0
	} else if p == b {
		t = 1
	}
	return []Intersection{{Point: p, TAB: t, TCD: u}}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func toRing(polygon []model.Coordinate) orb.Ring {
	ring := make(orb.Ring, 0, len(polygon)+1)
	for _, c := range polygon {
		ring = append(ring, c.Orb())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// PointInPolygon 点是否在多边形内 (边界上视为在内)
func PointInPolygon(p model.Coordinate, polygon []model.Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}
	return planar.RingContains(toRing(polygon), p.Orb())
}

// LineContainmentRatio 折线长度落在多边形内的比例 [0,1]
// 每条线段在与多边形边界的交点处切开，取每一小段的中点判断内外
func LineContainmentRatio(line, polygon []model.Coordinate) float64 {
	if len(polygon) < 3 {
		return 0
	}
	ring := toRing(polygon)
	total, inside := 0.0, 0.0
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		segLen := Distance(a, b)
		if segLen == 0 {
			continue
		}
		total += segLen

		cuts := []float64{0, 1}
		for j := 1; j < len(ring); j++ {
			c := model.FromOrb(ring[j-1])
			d := model.FromOrb(ring[j])
			for _, x := range SegmentIntersection(a, b, c, d) {
				cuts = append(cuts, x.TAB)
			}
		}
		sort.Float64s(cuts)

		for k := 1; k < len(cuts); k++ {
			t0, t1 := cuts[k-1], cuts[k]
			if t1-t0 <= endpointTolerance {
				continue
			}
			mid := Lerp(a, b, (t0+t1)/2)
			if planar.RingContains(ring, mid.Orb()) {
				inside += (t1 - t0) * segLen
			}
		}
	}
	if total == 0 {
		return 0
	}
	return math.Min(1, inside/total)
}

// LineWithinPolygon 折线是否完全落在多边形内
func LineWithinPolygon(line, polygon []model.Coordinate) bool {
	if len(line) == 0 || len(polygon) < 3 {
		return false
	}
	for _, c := range line {
		if !PointInPolygon(c, polygon) {
			return false
		}
	}
	return LineContainmentRatio(line, polygon) >= 1-1e-9
}
