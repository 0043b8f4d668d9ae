package model

import (
	"context"

	"sunotrack/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 设置
	GetSettings(ctx context.Context) (*entity.Settings, error)
	SaveSettings(ctx context.Context, settings *entity.Settings) error

	// 任务
	ListTasks(ctx context.Context) ([]entity.Task, error)
	CreateTask(ctx context.Context, task *entity.Task) error
	UpdateTask(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteTask(ctx context.Context, id string) error
	ReplaceTasks(ctx context.Context, tasks []entity.Task) error

	// 历史记录
	GetHistory(ctx context.Context) (*entity.History, error)
	SaveHistory(ctx context.Context, history *entity.History) error
}
