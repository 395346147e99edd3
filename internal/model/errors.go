// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeInvalidStatus          = "INVALID_STATUS"
	ErrCodeInvalidSortBy          = "INVALID_SORT_BY"
	ErrCodeTaskNotFound           = "TASK_NOT_FOUND"
	ErrCodeRateLimited            = "RATE_LIMITED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証失敗エラーを生成する。
// トークン不正・期限切れ・ユーザー消失のいずれでも同じ内容を返す。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Could not validate credentials",
		Category: "auth",
		Action:   "Log in again to obtain a new access token.",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Incorrect email or password",
		Category: "auth",
		Action:   "Check your email address and password.",
	}
}

// NewEmailAlreadyRegisteredError はメールアドレス重複エラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  "Email already registered",
		Category: "validation",
		Action:   "Log in with the existing account or use another email address.",
	}
}

// NewInvalidRequestError はリクエスト内容の不備を表すエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Fix the request and try again.",
	}
}

// NewInvalidStatusError は無効なステータス値のエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	valid := make([]string, 0, 3)
	for _, s := range TaskStatuses() {
		valid = append(valid, string(s))
	}
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("Invalid status %q. Valid values: %s", status, strings.Join(valid, ", ")),
		Category: "validation",
		Action:   "Use one of: " + strings.Join(valid, ", ") + ".",
	}
}

// NewInvalidSortByError は無効なソート対象のエラーを生成する。
func NewInvalidSortByError(sortBy string) *APIError {
	valid := make([]string, 0, 3)
	for _, f := range TaskSortFields() {
		valid = append(valid, string(f))
	}
	return &APIError{
		Code:     ErrCodeInvalidSortBy,
		Message:  fmt.Sprintf("Invalid sort_by %q. Valid values: %s", sortBy, strings.Join(valid, ", ")),
		Category: "validation",
		Action:   "Use one of: " + strings.Join(valid, ", ") + ".",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 存在しない場合と他ユーザーの所有物である場合を区別しない。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  "Task not found",
		Category: "task",
		Action:   "Check the task ID.",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}
