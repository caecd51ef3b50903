package db

import (
	"context"
	"errors"
	"fmt"

	"campus-walkways/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// StoreError 持久化失败，原样向上传递，核心逻辑不做重试
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Store 要素/步行道存储
// SaveWalkway 在 ID 为空时分配新 ID，否则按 ID 覆盖
type Store interface {
	ListWalkways(ctx context.Context) ([]model.Walkway, error)
	GetWalkway(ctx context.Context, id string) (model.Walkway, error)
	SaveWalkway(ctx context.Context, w model.Walkway) (model.Walkway, error)
	DeleteWalkway(ctx context.Context, id string) error

	ListFeatures(ctx context.Context) ([]model.Feature, error)
	SaveFeature(ctx context.Context, f model.Feature) (model.Feature, error)
	DeleteFeature(ctx context.Context, id string) error
}
