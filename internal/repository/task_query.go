package repository

import (
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// sortColumns はソート対象から実カラム名への対応。
// ここに無い値はSQLに埋め込まない。
var sortColumns = map[model.TaskSortField]string{
	model.TaskSortByTitle:     "title",
	model.TaskSortByCreatedAt: "created_at",
	model.TaskSortByStatus:    "status",
}

// likeEscaper はLIKEパターンのメタ文字をエスケープする。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListQuery はタスク一覧取得のSQLとバインド引数を組み立てる。
// owner_idによる絞り込みは常に最初の条件として付与する。
func buildListQuery(q model.TaskQuery) (string, []any) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`
	args := []any{q.OwnerID}
	argIndex := 2

	if q.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(q.Status))
		argIndex++
	}

	if q.Search != "" {
		// title または description の部分一致（大文字小文字を区別しない）
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+likeEscaper.Replace(q.Search)+"%")
		argIndex++
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[model.TaskSortByCreatedAt]
	}
	direction := "DESC"
	if q.Order == model.SortAsc {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)

	query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", argIndex, argIndex+1)
	args = append(args, q.Skip, q.Limit)

	return query, args
}

// buildUpdateQuery はパッチで指定されたカラムだけを書き換えるUPDATE文とバインド引数を組み立てる。
// 指定されなかったカラムはSET句に含めないため、並行する別の更新を上書きしない。
// patchは空でないこと。
func buildUpdateQuery(ownerID, id int64, patch model.TaskPatch) (string, []any) {
	args := []any{id, ownerID}
	sets := make([]string, 0, 3)

	if patch.Title.Set {
		args = append(args, patch.Title.Value)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Description.Set {
		args = append(args, nullStringPtr(patch.Description.Value))
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if patch.Status.Set {
		args = append(args, string(patch.Status.Value))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND owner_id = $2 RETURNING ` + taskColumns
	return query, args
}
