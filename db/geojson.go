package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"campus-walkways/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseFeatureCollection 把 GeoJSON FeatureCollection 拆成步行道和要素
// LineString/MultiLineString 作为步行道，其余几何作为要素
func ParseFeatureCollection(data []byte) ([]model.Walkway, []model.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("解析 GeoJSON 失败: %w", err)
	}

	var walkways []model.Walkway
	var features []model.Feature
	for _, f := range fc.Features {
		id := featureID(f)
		switch g := f.Geometry.(type) {
		case orb.LineString:
			walkways = append(walkways, walkwayFromFeature(id, f, g))
		case orb.MultiLineString:
			for i, ls := range g {
				sub := id
				if sub != "" {
					sub = fmt.Sprintf("%s-%d", id, i)
				}
				walkways = append(walkways, walkwayFromFeature(sub, f, ls))
			}
		case nil:
			continue
		default:
			kind := f.Properties.MustString("kind", "")
			if kind == "" {
				kind = model.FeatureBuilding
				if _, ok := g.(orb.Point); ok {
					kind = model.FeatureEntrance
				}
			}
			features = append(features, model.Feature{
				ID:       id,
				Kind:     kind,
				Name:     f.Properties.MustString("name", ""),
				Geometry: geojson.NewGeometry(g),
			})
		}
	}
	return walkways, features, nil
}

func featureID(f *geojson.Feature) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return f.Properties.MustString("id", "")
}

func walkwayFromFeature(id string, f *geojson.Feature, ls orb.LineString) model.Walkway {
	w := model.Walkway{
		ID:       id,
		Name:     f.Properties.MustString("name", ""),
		Type:     f.Properties.MustString("type", ""),
		Curved:   f.Properties.MustBool("curved", false),
		Group:    f.Properties.MustString("group", ""),
		Geometry: coordsFromLine(ls),
	}
	if raw, ok := f.Properties["control"].([]interface{}); ok {
		w.Control = coordsFromRaw(raw)
	}
	if idx, ok := f.Properties["segment_index"].(float64); ok {
		i := int(idx)
		w.SegmentIndex = &i
	}
	if raw, ok := f.Properties["tags"].([]interface{}); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok {
				w.Tags = append(w.Tags, s)
			}
		}
	}
	return w
}

func coordsFromLine(ls orb.LineString) []model.Coordinate {
	out := make([]model.Coordinate, len(ls))
	for i, p := range ls {
		out[i] = model.FromOrb(p)
	}
	return out
}

func coordsFromRaw(raw []interface{}) []model.Coordinate {
	out := make([]model.Coordinate, 0, len(raw))
	for _, item := range raw {
		pair, ok := item.([]interface{})
		if !ok || len(pair) != 2 {
			return nil
		}
		lng, ok1 := pair[0].(float64)
		lat, ok2 := pair[1].(float64)
		if !ok1 || !ok2 {
			return nil
		}
		out = append(out, model.Pt(lng, lat))
	}
	return out
}

func lineFromCoords(cs []model.Coordinate) orb.LineString {
	ls := make(orb.LineString, len(cs))
	for i, c := range cs {
		ls[i] = c.Orb()
	}
	return ls
}

// ExportFeatureCollection 把步行道和要素导出为 GeoJSON FeatureCollection
func ExportFeatureCollection(walkways []model.Walkway, features []model.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, w := range walkways {
		f := geojson.NewFeature(lineFromCoords(w.Geometry))
		f.ID = w.ID
		f.Properties["name"] = w.Name
		f.Properties["type"] = w.Type
		f.Properties["curved"] = w.Curved
		if len(w.Control) > 0 {
			f.Properties["control"] = w.Control
		}
		if w.Group != "" {
			f.Properties["group"] = w.Group
		}
		if w.SegmentIndex != nil {
			f.Properties["segment_index"] = *w.SegmentIndex
		}
		if len(w.Tags) > 0 {
			f.Properties["tags"] = w.Tags
		}
		fc.Append(f)
	}
	for _, ft := range features {
		if ft.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(ft.Geometry.Geometry())
		f.ID = ft.ID
		f.Properties["kind"] = ft.Kind
		f.Properties["name"] = ft.Name
		fc.Append(f)
	}
	return fc
}

// SeedIfEmpty 存储为空时从 GeoJSON 文件导入初始数据
// 文件不存在不算错误
func SeedIfEmpty(ctx context.Context, store Store, path string, logger *slog.Logger) error {
	existing, err := store.ListWalkways(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("未找到初始数据文件，跳过导入", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}

	walkways, features, err := ParseFeatureCollection(data)
	if err != nil {
		return err
	}
	for _, w := range walkways {
		if _, err := store.SaveWalkway(ctx, w); err != nil {
			return err
		}
	}
	for _, f := range features {
		if _, err := store.SaveFeature(ctx, f); err != nil {
			return err
		}
	}
	logger.Info("初始数据导入成功", "walkways", len(walkways), "features", len(features))
	return nil
}
