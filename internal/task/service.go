// Package task はタスク管理のドメインロジックを提供する。
// すべての操作は呼び出し元ユーザー（オーナー）のタスクに限定される。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// CreateInput はタスク作成時の入力。
// Statusが空の場合はtodoとして作成する。
type CreateInput struct {
	Title       string
	Description *string
	Status      model.TaskStatus
}

// ListParams はタスク一覧取得時の入力。
// 文字列はクエリパラメータの値をそのまま受け取り、ここで検証する。
type ListParams struct {
	Status string
	Search string
	SortBy string
	Order  string
	Skip   int
	Limit  *int // nilの場合はデフォルト件数
}

// Config はタスク一覧のページング設定。
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Service はタスク管理のサービス層。
type Service struct {
	repo repository.TaskRepository
	cfg  Config
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.TaskRepository, cfg Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Create はオーナーのタスクを作成する。
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (*model.Task, error) {
	if in.Title == "" {
		return nil, model.NewInvalidRequestError("title is required")
	}
	status := in.Status
	if status == "" {
		status = model.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, model.NewInvalidStatusError(string(status))
	}

	t := &model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	slog.Debug("task created",
		slog.Int64("user_id", ownerID),
		slog.Int64("task_id", t.ID),
	)
	return t, nil
}

// Get はオーナーのタスクを1件取得する。
// 存在しない場合と他ユーザーのタスクである場合はどちらもTASK_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, ownerID, id int64) (*model.Task, error) {
	t, err := s.repo.FindByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

// Update は指定されたフィールドのみを更新する。
// 空のパッチは書き込みを行わず既存のタスクを返す。
func (s *Service) Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (*model.Task, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.Get(ctx, ownerID, id)
	}

	updated, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return updated, nil
}

// Delete はオーナーのタスクを削除する。
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	deleted, err := s.repo.DeleteByOwnerAndID(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError()
	}

	slog.Debug("task deleted",
		slog.Int64("user_id", ownerID),
		slog.Int64("task_id", id),
	)
	return nil
}

// List はオーナーのタスク一覧を絞り込み・検索・ソート・ページングして返す。
// sort_byとstatusは検証し、orderは"asc"以外を降順として扱う。
func (s *Service) List(ctx context.Context, ownerID int64, p ListParams) ([]*model.Task, error) {
	query, err := s.buildQuery(ownerID, p)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Stats はオーナーのタスク件数をステータスごとに集計する。
// 完了率は小数第1位に丸めたパーセンテージで、タスクが0件の場合は0。
func (s *Service) Stats(ctx context.Context, ownerID int64) (*model.TaskStats, error) {
	counts, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("タスク集計に失敗しました: %w", err)
	}

	stats := &model.TaskStats{
		Todo:       counts[model.TaskStatusTodo],
		InProgress: counts[model.TaskStatusInProgress],
		Done:       counts[model.TaskStatusDone],
	}
	stats.Total = stats.Todo + stats.InProgress + stats.Done
	stats.CompletionRate = completionRate(stats.Done, stats.Total)
	return stats, nil
}

func (s *Service) buildQuery(ownerID int64, p ListParams) (model.TaskQuery, error) {
	q := model.TaskQuery{
		OwnerID: ownerID,
		Search:  p.Search,
		SortBy:  model.TaskSortByCreatedAt,
		Order:   model.ParseSortOrder(p.Order),
		Skip:    p.Skip,
		Limit:   s.cfg.DefaultLimit,
	}

	if p.Status != "" {
		status := model.TaskStatus(p.Status)
		if !status.Valid() {
			return q, model.NewInvalidStatusError(p.Status)
		}
		q.Status = status
	}

	if p.SortBy != "" {
		sortBy := model.TaskSortField(p.SortBy)
		if !sortBy.Valid() {
			return q, model.NewInvalidSortByError(p.SortBy)
		}
		q.SortBy = sortBy
	}

	if p.Skip < 0 {
		return q, model.NewInvalidRequestError("skip must not be negative")
	}

	if p.Limit != nil {
		q.Limit = clampLimit(*p.Limit, s.cfg.MaxLimit)
	}
	return q, nil
}

// validatePatch はパッチで指定された値を検証する。
func validatePatch(p model.TaskPatch) error {
	if p.Title.Set && p.Title.Value == "" {
		return model.NewInvalidRequestError("title must not be empty")
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return model.NewInvalidStatusError(string(p.Status.Value))
	}
	return nil
}

// clampLimit は取得件数を1以上maxLimit以下に丸める。
func clampLimit(limit, maxLimit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// completionRate は完了率（%）を小数第1位に丸めて返す。
func completionRate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*1000) / 10
}
