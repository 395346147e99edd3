package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
// すべての操作は認証済みユーザーをオーナーとして実行する。
type TaskServiceInterface interface {
	Create(ctx context.Context, ownerID int64, in task.CreateInput) (*model.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*model.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	List(ctx context.Context, ownerID int64, params task.ListParams) ([]*model.Task, error)
	Stats(ctx context.Context, ownerID int64) (*model.TaskStats, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// taskResponse はタスク情報のAPIレスポンス。オーナーのユーザー情報を埋め込む。
type taskResponse struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	OwnerID     int64        `json:"owner_id"`
	Owner       userResponse `json:"owner"`
}

// taskStatsResponse はタスク集計のAPIレスポンス。
type taskStatsResponse struct {
	Total          int     `json:"total"`
	Todo           int     `json:"todo"`
	InProgress     int     `json:"in_progress"`
	Done           int     `json:"done"`
	CompletionRate float64 `json:"completion_rate"`
}

// messageResponse はメッセージのみのAPIレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// CreateTask はタスクを作成する。
// POST /tasks/
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	t, err := h.service.Create(r.Context(), user.ID, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatus(req.Status),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, toTaskResponse(t, user))
}

// ListTasks はタスク一覧を返す。
// GET /tasks/?skip=&limit=&status=&sort_by=&order=&search=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	params := task.ListParams{
		Status: q.Get("status"),
		Search: q.Get("search"),
		SortBy: q.Get("sort_by"),
		Order:  q.Get("order"),
	}

	if v := q.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("skip must be an integer"))
			return
		}
		params.Skip = skip
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("limit must be an integer"))
			return
		}
		params.Limit = &limit
	}

	tasks, err := h.service.List(r.Context(), user.ID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toTaskResponse(t, user)
	}
	writeJSON(w, resp)
}

// GetStats はタスクのステータス別集計を返す。
// GET /tasks/stats
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, taskStatsResponse{
		Total:          stats.Total,
		Todo:           stats.Todo,
		InProgress:     stats.InProgress,
		Done:           stats.Done,
		CompletionRate: stats.CompletionRate,
	})
}

// GetTask はタスク詳細を返す。
// GET /tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, toTaskResponse(t, user))
}

// UpdateTask はボディに含まれるフィールドのみを更新する。
// PUT /tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var patch model.TaskPatch
	if !decodeJSONBody(w, r, &patch) {
		return
	}

	t, err := h.service.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, toTaskResponse(t, user))
}

// DeleteTask はタスクを削除する。
// DELETE /tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, messageResponse{Message: "Task deleted successfully"})
}

// taskIDParam はURLパラメータのタスクIDを解析する。
// 整数でない場合は400を書き込みfalseを返す。
func taskIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("task id must be an integer"))
		return 0, false
	}
	return id, true
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
// タスクのオーナーは常にリクエストユーザーである。
func toTaskResponse(t *model.Task, owner *model.User) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		OwnerID:     t.OwnerID,
		Owner:       toUserResponse(owner),
	}
}
