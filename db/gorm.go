package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campus-walkways/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paulmach/orb/geojson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalkwayRow 步行道表
type WalkwayRow struct {
	ID           string             `gorm:"primaryKey"`
	Name         string             `gorm:"index"`
	Type         string             `gorm:"index"`
	Geometry     []model.Coordinate `gorm:"serializer:json;not null"`
	Control      []model.Coordinate `gorm:"serializer:json"`
	Curved       bool
	GroupID      string `gorm:"index"`
	SegmentIndex *int
	Tags         pq.StringArray `gorm:"type:text[]"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (WalkwayRow) TableName() string { return "walkways" }

// FeatureRow 要素表，几何以 GeoJSON 文本保存
type FeatureRow struct {
	ID        string `gorm:"primaryKey"`
	Kind      string `gorm:"index"`
	Name      string `gorm:"index"`
	Geometry  string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FeatureRow) TableName() string { return "features" }

func walkwayToRow(w model.Walkway) WalkwayRow {
	return WalkwayRow{
		ID:           w.ID,
		Name:         w.Name,
		Type:         w.Type,
		Geometry:     w.Geometry,
		Control:      w.Control,
		Curved:       w.Curved,
		GroupID:      w.Group,
		SegmentIndex: w.SegmentIndex,
		Tags:         pq.StringArray(w.Tags),
	}
}

func (r WalkwayRow) toModel() model.Walkway {
	return model.Walkway{
		ID:           r.ID,
		Name:         r.Name,
		Type:         r.Type,
		Geometry:     r.Geometry,
		Control:      r.Control,
		Curved:       r.Curved,
		Group:        r.GroupID,
		SegmentIndex: r.SegmentIndex,
		Tags:         []string(r.Tags),
	}
}

func featureToRow(f model.Feature) (FeatureRow, error) {
	row := FeatureRow{ID: f.ID, Kind: f.Kind, Name: f.Name}
	if f.Geometry != nil {
		data, err := json.Marshal(f.Geometry)
		if err != nil {
			return row, fmt.Errorf("序列化要素几何失败: %w", err)
		}
		row.Geometry = string(data)
	}
	return row, nil
}

func (r FeatureRow) toModel() (model.Feature, error) {
	f := model.Feature{ID: r.ID, Kind: r.Kind, Name: r.Name}
	if r.Geometry != "" {
		g, err := geojson.UnmarshalGeometry([]byte(r.Geometry))
		if err != nil {
			return f, fmt.Errorf("解析要素 %s 几何失败: %w", r.ID, err)
		}
		f.Geometry = g
	}
	return f, nil
}

// Open 连接 PostgreSQL 并自动迁移表结构
// 带重试 (Docker 启动时数据库可能还没准备好)
func Open(dsn string, maxRetries int, logger *slog.Logger) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)
	if maxRetries < 1 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		logger.Warn("等待数据库就绪", "attempt", i+1, "max", maxRetries, "err", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	if err := conn.AutoMigrate(&WalkwayRow{}, &FeatureRow{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return conn, nil
}

// GormStore 基于 gorm 的存储实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 包装一个已经迁移好的连接
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListWalkways(ctx context.Context) ([]model.Walkway, error) {
	var rows []WalkwayRow
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, storeErr("list walkways", err)
	}
	out := make([]model.Walkway, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (s *GormStore) GetWalkway(ctx context.Context, id string) (model.Walkway, error) {
	var row WalkwayRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Walkway{}, storeErr("get walkway "+id, ErrNotFound)
	}
	if err != nil {
		return model.Walkway{}, storeErr("get walkway "+id, err)
	}
	return row.toModel(), nil
}

func (s *GormStore) SaveWalkway(ctx context.Context, w model.Walkway) (model.Walkway, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	row := walkwayToRow(w)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return model.Walkway{}, storeErr("save walkway "+w.ID, err)
	}
	return row.toModel(), nil
}

func (s *GormStore) DeleteWalkway(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&WalkwayRow{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete walkway "+id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("delete walkway "+id, ErrNotFound)
	}
	return nil
}

func (s *GormStore) ListFeatures(ctx context.Context) ([]model.Feature, error) {
	var rows []FeatureRow
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, storeErr("list features", err)
	}
	out := make([]model.Feature, 0, len(rows))
	for _, r := range rows {
		f, err := r.toModel()
		if err != nil {
			return nil, storeErr("list features", err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *GormStore) SaveFeature(ctx context.Context, f model.Feature) (model.Feature, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	row, err := featureToRow(f)
	if err != nil {
		return model.Feature{}, storeErr("save feature "+f.ID, err)
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return model.Feature{}, storeErr("save feature "+f.ID, err)
	}
	return f, nil
}

func (s *GormStore) DeleteFeature(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&FeatureRow{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete feature "+id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("delete feature "+id, ErrNotFound)
	}
	return nil
}
