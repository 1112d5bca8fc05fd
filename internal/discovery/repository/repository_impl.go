package repository

import (
	"context"

	"github.com/coptimize/openinventory/internal/discovery/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Tracker {
	return &repo{}
}

// CreateTask replaces any previous row for the same external task id, the
// same way re-submitting a task replaces its polling chain.
func (r *repo) CreateTask(ctx context.Context, gdb *gorm.DB, t *domain.Task) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO product_discovery_tasks (product_id, task_id, status, stock_id, task_result, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(task_id) DO UPDATE SET
		     product_id = excluded.product_id,
		     status = excluded.status,
		     stock_id = excluded.stock_id,
		     task_result = excluded.task_result,
		     updated_at = excluded.updated_at`,
		t.ProductID, t.TaskID, t.Status, t.StockID, t.TaskResult, t.CreatedAt, t.UpdatedAt,
	).Error
}

// UpdateStatus leaves unknown task ids and already-terminal rows alone.
func (r *repo) UpdateStatus(ctx context.Context, gdb *gorm.DB, taskID string, status domain.Status, result, at string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE product_discovery_tasks
		 SET status = ?, task_result = ?, updated_at = ?
		 WHERE task_id = ? AND status NOT IN (?, ?)`,
		status, result, at, taskID, domain.StatusCompleted, domain.StatusCancelled,
	).Error
}

func (r *repo) FindByTaskID(ctx context.Context, gdb *gorm.DB, taskID string) (*domain.Task, error) {
	var t domain.Task
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM product_discovery_tasks WHERE task_id = ?`, taskID,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindActive(ctx context.Context, gdb *gorm.DB) ([]domain.Task, error) {
	var items []domain.Task
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM product_discovery_tasks WHERE status = ? ORDER BY created_at ASC`,
		domain.StatusPending,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
