package editor

import (
	"context"

	"campus-walkways/algo"
	"campus-walkways/model"
	"campus-walkways/utils"
)

// RectangleThreshold 框选时长度落在矩形内的最低比例
const RectangleThreshold = 0.5

// SelectByRectangle 矩形框选: 长度有一半及以上在矩形内即选中
func SelectByRectangle(walkways []model.Walkway, bounds model.Bounds) []string {
	ring := bounds.Normalize().Ring()
	var ids []string
	for _, w := range walkways {
		if utils.LineContainmentRatio(w.Normalize().Geometry, ring) >= RectangleThreshold {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// SelectByPolygon 多边形圈选: 只有完全落在多边形内才选中
// 与矩形框选的一半阈值不同，两种策略保持各自的行为
func SelectByPolygon(walkways []model.Walkway, polygon []model.Coordinate) []string {
	var ids []string
	for _, w := range walkways {
		if utils.LineWithinPolygon(w.Normalize().Geometry, polygon) {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// DeleteSelection 逐条删除选中的步行道，遇到存储错误立即返回 (不重试)
// 返回已经删除的数量
func DeleteSelection(ctx context.Context, store Store, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := store.DeleteWalkway(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	algo.Logger().Info("walkways deleted", "count", deleted)
	return deleted, nil
}
