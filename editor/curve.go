package editor

import (
	"math"

	"campus-walkways/model"
	"campus-walkways/utils"
)

// 曲线默认参数
const (
	DefaultSamples = 16
	DefaultAlpha   = 0.5 // centripetal
)

// CatmullRom 对控制点做 Catmull-Rom 重采样 (Barry-Goldman 形式)
// alpha=0 为均匀参数化，0.5 为向心参数化，1 为弦长参数化
// 每一段输出 samples 个点，首尾用镜像虚拟点延长，保证曲线精确经过每个控制点
// 结果长度为 1 + (len(points)-1)*samples，控制点 i 位于下标 i*samples
func CatmullRom(points []model.Coordinate, samples int, alpha float64) []model.Coordinate {
	n := len(points)
	if n < 3 || samples < 1 {
		return model.CloneCoords(points)
	}

	ext := make([]model.Coordinate, 0, n+2)
	ext = append(ext, mirror(points[1], points[0]))
	ext = append(ext, points...)
	ext = append(ext, mirror(points[n-2], points[n-1]))

	out := make([]model.Coordinate, 0, 1+(n-1)*samples)
	out = append(out, points[0])
	for i := 1; i+2 < len(ext); i++ {
		p0, p1, p2, p3 := ext[i-1], ext[i], ext[i+1], ext[i+2]
		t0 := 0.0
		t1 := knot(t0, p0, p1, alpha)
		t2 := knot(t1, p1, p2, alpha)
		t3 := knot(t2, p2, p3, alpha)
		for s := 1; s <= samples; s++ {
			if s == samples {
				// 段终点直接取控制点，避免浮点漂移
				out = append(out, p2)
				continue
			}
			t := t1 + (t2-t1)*float64(s)/float64(samples)
			out = append(out, barryGoldman(p0, p1, p2, p3, t0, t1, t2, t3, t))
		}
	}
	return out
}

// mirror 以 pivot 为中心镜像 p
func mirror(p, pivot model.Coordinate) model.Coordinate {
	return model.Coordinate{Lng: 2*pivot.Lng - p.Lng, Lat: 2*pivot.Lat - p.Lat}
}

func knot(ti float64, a, b model.Coordinate, alpha float64) float64 {
	d := math.Pow(utils.Distance(a, b), alpha)
	if d < utils.Epsilon {
		d = utils.Epsilon
	}
	return ti + d
}

func mix(a, b model.Coordinate, ta, tb, t float64) model.Coordinate {
	den := tb - ta
	if math.Abs(den) < utils.Epsilon {
		den = utils.Epsilon
	}
	wa := (tb - t) / den
	wb := (t - ta) / den
	return model.Coordinate{
		Lng: wa*a.Lng + wb*b.Lng,
		Lat: wa*a.Lat + wb*b.Lat,
	}
}

func barryGoldman(p0, p1, p2, p3 model.Coordinate, t0, t1, t2, t3, t float64) model.Coordinate {
	a1 := mix(p0, p1, t0, t1, t)
	a2 := mix(p1, p2, t1, t2, t)
	a3 := mix(p2, p3, t2, t3, t)
	b1 := mix(a1, a2, t0, t2, t)
	b2 := mix(a2, a3, t1, t3, t)
	return mix(b1, b2, t1, t2, t)
}
