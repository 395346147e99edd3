// Package auth はユーザー登録、パスワード認証、アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// TokenTypeBearer はトークンエンドポイントが返すトークン種別。
const TokenTypeBearer = "bearer"

// AccessToken はログイン成功時に発行されるトークン。
type AccessToken struct {
	Value     string
	Type      string
	ExpiresAt time.Time
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   *TokenService
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, tokens *TokenService) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register は新規ユーザーを登録する。
// メールアドレスが登録済みの場合はEMAIL_ALREADY_REGISTEREDエラーを返す。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, model.NewInvalidRequestError("email is required")
	}
	if password == "" {
		return nil, model.NewInvalidRequestError("password is required")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailAlreadyRegisteredError()
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 同時登録の競合はデータベースの一意制約で検出される
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailAlreadyRegisteredError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
	)
	return user, nil
}

// Authenticate はメールアドレスとパスワードを照合する。
// ユーザーが存在しない場合とパスワード不一致の場合はどちらもnilを返す。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	if !s.hasher.Compare(user.HashedPassword, password) {
		return nil, nil
	}
	return user, nil
}

// Login は資格情報を検証し、アクセストークンを発行する。
// 失敗理由（ユーザー不在・パスワード不一致）は区別せずINVALID_CREDENTIALSを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		slog.Info("login failed", slog.String("reason", "invalid_credentials"))
		return nil, model.NewInvalidCredentialsError()
	}

	value, expiresAt, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return &AccessToken{
		Value:     value,
		Type:      TokenTypeBearer,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveUser はアクセストークンから現在のユーザーを解決する。
// トークン不正、ユーザー不在、無効化済みユーザーはいずれもUNAUTHORIZEDを返す。
func (s *Service) ResolveUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	email, err := s.tokens.Parse(token)
	if err != nil {
		slog.Debug("token rejected", slog.String("error", err.Error()))
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, model.NewUnauthorizedError()
	}
	return user, nil
}
