// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrDuplicateEmail は同じメールアドレスのユーザーが既に存在する場合に返される。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレスの完全一致（大文字小文字を区別）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDと作成日時をuserに設定する。
	// メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての操作はオーナーIDで絞り込まれ、他ユーザーのタスクは存在しないものとして扱う。
type TaskRepository interface {
	// Create はタスクを作成し、採番されたIDと作成日時をtaskに設定する。
	// Statusが空の場合はtodoとして保存する。
	Create(ctx context.Context, task *model.Task) error

	// FindByOwnerAndID はオーナーのタスクを取得する。
	// 存在しない場合、または他ユーザーのタスクである場合はnilを返す。
	FindByOwnerAndID(ctx context.Context, ownerID, id int64) (*model.Task, error)

	// Update はパッチで指定されたフィールドのみをアトミックに更新し、更新後のタスクを返す。
	// 指定されなかったフィールドには書き込まない。
	// 対象が存在しない場合はnilを返す。ステータス値の検証は行わない。
	Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (*model.Task, error)

	// DeleteByOwnerAndID はオーナーのタスクを削除する。
	// 削除した場合はtrue、対象が存在しない場合はfalseを返す。
	DeleteByOwnerAndID(ctx context.Context, ownerID, id int64) (bool, error)

	// List は絞り込み・検索・ソート・ページネーションを適用したタスク一覧を返す。
	// クエリ値は呼び出し側で検証済みであること。
	List(ctx context.Context, query model.TaskQuery) ([]*model.Task, error)

	// CountByStatus はオーナーのタスク数をステータスごとに返す。
	CountByStatus(ctx context.Context, ownerID int64) (map[model.TaskStatus]int, error)
}
