// Package model はドメインモデルを定義する。
package model

import "time"

// Task はユーザーが所有するタスクを表す。
// OwnerIDとCreatedAtは作成後に変更されない。
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	CreatedAt   time.Time
	OwnerID     int64
}

// TaskStatus はタスクの進捗状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手。
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusInProgress は作業中。
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone は完了。
	TaskStatusDone TaskStatus = "done"
)

// TaskStatuses は有効なステータスの一覧を定義順で返す。
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
}

// Valid はステータスが定義済みの値かどうかを返す。
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskSortField はタスク一覧のソート対象カラムを表す。
type TaskSortField string

const (
	TaskSortByTitle     TaskSortField = "title"
	TaskSortByCreatedAt TaskSortField = "created_at"
	TaskSortByStatus    TaskSortField = "status"
)

// TaskSortFields は有効なソート対象の一覧を返す。
func TaskSortFields() []TaskSortField {
	return []TaskSortField{TaskSortByTitle, TaskSortByCreatedAt, TaskSortByStatus}
}

// Valid はソート対象が定義済みの値かどうかを返す。
func (f TaskSortField) Valid() bool {
	switch f {
	case TaskSortByTitle, TaskSortByCreatedAt, TaskSortByStatus:
		return true
	}
	return false
}

// SortOrder はソート方向を表す。
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder は文字列をSortOrderに変換する。
// "asc" 以外はすべて降順として扱う。
func ParseSortOrder(s string) SortOrder {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// TaskQuery はオーナー単位のタスク一覧取得条件を表す。
// Statusが空の場合はステータスで絞り込まない。Searchが空の場合は検索しない。
type TaskQuery struct {
	OwnerID int64
	Status  TaskStatus
	Search  string
	SortBy  TaskSortField
	Order   SortOrder
	Skip    int
	Limit   int
}

// TaskPatch はタスクの部分更新内容を表す。
// Setがfalseのフィールドは既存の値を維持する。
type TaskPatch struct {
	Title       Optional[string]     `json:"title"`
	Description Optional[*string]    `json:"description"`
	Status      Optional[TaskStatus] `json:"status"`
}

// IsEmpty は更新対象のフィールドが1つも指定されていない場合にtrueを返す。
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set
}

// TaskStats はオーナー単位のタスク集計結果を表す。
type TaskStats struct {
	Total          int
	Todo           int
	InProgress     int
	Done           int
	CompletionRate float64
}
