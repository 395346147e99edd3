package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/taskman/internal/model"
)

// taskColumns はtasksテーブルからTaskを読み取る際のカラム並び。
const taskColumns = `id, title, description, status, created_at, owner_id`

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Create はタスクを作成する。IDと作成日時はデータベースが採番する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	var status string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, status, owner_id)
		 VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'todo'), $4)
		 RETURNING id, status, created_at`,
		task.Title, nullStringPtr(task.Description), string(task.Status), task.OwnerID,
	).Scan(&task.ID, &status, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	task.Status = model.TaskStatus(status)
	return nil
}

// FindByOwnerAndID はオーナーのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByOwnerAndID(ctx context.Context, ownerID, id int64) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// Update はパッチで指定されたカラムのみを単一のUPDATE文で書き換え、更新後の行を返す。
// 空のパッチは書き込みを行わず現在の行を返す。
func (r *PostgresTaskRepo) Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (*model.Task, error) {
	if patch.IsEmpty() {
		return r.FindByOwnerAndID(ctx, ownerID, id)
	}

	query, args := buildUpdateQuery(ownerID, id, patch)
	updated, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// DeleteByOwnerAndID はオーナーのタスクを削除する。
func (r *PostgresTaskRepo) DeleteByOwnerAndID(ctx context.Context, ownerID, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// List は条件に一致するタスク一覧を返す。
func (r *PostgresTaskRepo) List(ctx context.Context, query model.TaskQuery) ([]*model.Task, error) {
	sqlQuery, args := buildListQuery(query)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}

// CountByStatus はオーナーのタスク数をステータスごとに集計する。
func (r *PostgresTaskRepo) CountByStatus(ctx context.Context, ownerID int64) (map[model.TaskStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE owner_id = $1 GROUP BY status`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.TaskStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[model.TaskStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task counts: %w", err)
	}

	return counts, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask はtaskColumnsの並びで1行を読み取る。
func scanTask(s rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var description sql.NullString
	var status string

	if err := s.Scan(&task.ID, &task.Title, &description, &status, &task.CreatedAt, &task.OwnerID); err != nil {
		return nil, err
	}

	task.Description = stringPtrValue(description)
	task.Status = model.TaskStatus(status)
	return task, nil
}

// nullStringPtr は*stringをsql.NullStringに変換する。nilの場合はNULL。
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtrValue はsql.NullStringを*stringに変換する。NULLの場合はnil。
func stringPtrValue(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
