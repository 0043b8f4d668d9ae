package sql

import (
	"context"
	"fmt"
	"strings"

	"sunotrack/internal/entity"

	"gorm.io/gorm"
)

// ListTasks returns every task in canonical order, newest submission first.
// The autoincrement sequence reflects insertion order, so newest-first is
// simply the descending sequence.
func (r *GormRepository) ListTasks(ctx context.Context) ([]entity.Task, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var tasks []entity.Task
	if err := r.db.WithContext(ctx).Order("seq DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask inserts a new task row.
func (r *GormRepository) CreateTask(ctx context.Context, task *entity.Task) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if task == nil {
		return fmt.Errorf("task is nil")
	}
	if strings.TrimSpace(task.ID) == "" {
		return fmt.Errorf("task id is empty")
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// UpdateTask applies the given column updates to the task with the matching
// provider id. Updating an absent id is a silent no-op, matching the store's
// merge semantics.
func (r *GormRepository) UpdateTask(ctx context.Context, id string, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("task id is empty")
	}
	if len(updates) == 0 {
		return fmt.Errorf("no updates provided")
	}
	return r.db.WithContext(ctx).Model(&entity.Task{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteTask removes the task with the matching provider id, if any.
func (r *GormRepository) DeleteTask(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("task id is empty")
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Task{}).Error
}

// ReplaceTasks swaps the whole task table for the given list, which arrives
// in canonical newest-first order. Rows are inserted oldest-first so the
// regenerated sequence numbers reproduce that order on the next ListTasks.
// The swap is transactional: a failed import leaves the table untouched.
func (r *GormRepository) ReplaceTasks(ctx context.Context, tasks []entity.Task) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		for i := len(tasks) - 1; i >= 0; i-- {
			task := tasks[i]
			task.Seq = 0
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
