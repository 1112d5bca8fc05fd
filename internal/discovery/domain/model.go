package domain

import (
	"context"

	"github.com/coptimize/openinventory/internal/analysis"
	"gorm.io/gorm"
)

// Status is the local lifecycle of a discovery task. It is deliberately
// narrower than the analysis service's own states: locally a task is only
// ever waiting, done, or given up on.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Task struct {
	ID         int64   `json:"id" gorm:"column:id"`
	ProductID  string  `json:"product_id"`
	TaskID     string  `json:"task_id"`
	Status     Status  `json:"status"`
	StockID    *string `json:"stock_id,omitempty"`
	TaskResult *string `json:"task_result,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  *string `json:"updated_at,omitempty"`
}

func (Task) TableName() string { return "product_discovery_tasks" }

// Tracker persists discovery tasks. UpdateStatus is a no-op for unknown
// task ids and never moves a task out of a terminal status.
type Tracker interface {
	CreateTask(ctx context.Context, db *gorm.DB, task *Task) error
	UpdateStatus(ctx context.Context, db *gorm.DB, taskID string, status Status, result, at string) error
	FindByTaskID(ctx context.Context, db *gorm.DB, taskID string) (*Task, error)
	FindActive(ctx context.Context, db *gorm.DB) ([]Task, error)
}

type Service interface {
	StartFromImages(ctx context.Context, productID string, stockID *string, images []analysis.Image) (*Task, error)
	StartFromText(ctx context.Context, productID string, stockID *string, text string) (*Task, error)

	// Watch starts the delayed polling chain for a task, replacing any
	// chain already running for the same task id.
	Watch(taskID, productID string, stockID *string)

	Active(ctx context.Context) ([]Task, error)
	Task(ctx context.Context, taskID string) (*Task, error)
}
