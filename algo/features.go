package algo

import (
	"math"

	"campus-walkways/model"
	"campus-walkways/utils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// FeatureAnchor 要素的代表点: 点要素取自身，面要素取面积质心
func FeatureAnchor(f model.Feature) (model.Coordinate, bool) {
	if f.Geometry == nil {
		return model.Coordinate{}, false
	}
	geom := f.Geometry.Geometry()
	if geom == nil {
		return model.Coordinate{}, false
	}
	switch g := geom.(type) {
	case orb.Point:
		return model.FromOrb(g), true
	case orb.Polygon, orb.MultiPolygon, orb.Ring:
		c, _ := planar.CentroidArea(g)
		return model.FromOrb(c), true
	default:
		return model.FromOrb(geom.Bound().Center()), true
	}
}

// featureContains 点是否落在面要素内
func featureContains(f model.Feature, c model.Coordinate) bool {
	if f.Geometry == nil {
		return false
	}
	switch g := f.Geometry.Geometry().(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, c.Orb())
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, c.Orb())
	}
	return false
}

// NearestFeature 为路线端点找一个名字
// 优先取半径内最近的入口，其次取包含该点的建筑/房间，最后取半径内最近的任意要素
func NearestFeature(features []model.Feature, c model.Coordinate, radiusMeters float64) *model.Feature {
	var entrance, container, nearest *model.Feature
	entranceDist, nearestDist := math.Inf(1), math.Inf(1)

	for i := range features {
		f := &features[i]
		if f.Name == "" {
			continue
		}
		if container == nil && f.Kind != model.FeatureEntrance && featureContains(*f, c) {
			container = f
		}
		anchor, ok := FeatureAnchor(*f)
		if !ok {
			continue
		}
		d := utils.HaversineDistance(c, anchor)
		if d > radiusMeters {
			continue
		}
		if f.Kind == model.FeatureEntrance && d < entranceDist {
			entrance, entranceDist = f, d
		}
		if d < nearestDist {
			nearest, nearestDist = f, d
		}
	}
	switch {
	case entrance != nil:
		return entrance
	case container != nil:
		return container
	}
	return nearest
}
