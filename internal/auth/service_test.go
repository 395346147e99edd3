package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)

// --- ヘルパー ---

func newTestService(repo repository.UserRepository) *Service {
	return NewService(repo, NewBcryptHasher(bcrypt.MinCost), NewTokenService("test-secret", 30*time.Minute))
}

func hashForTest(t *testing.T, password string) string {
	t.Helper()
	hashed, err := NewBcryptHasher(bcrypt.MinCost).Hash(password)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	return hashed
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError with code %s, got %v", code, err)
	}
	if apiErr.Code != code {
		t.Errorf("error code = %q, want %q", apiErr.Code, code)
	}
}

// --- テスト ---

func TestRegister_NewEmail_CreatesActiveUserWithHashedPassword(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID != 1 || user.Email != "a@x.com" || !user.IsActive {
		t.Errorf("unexpected user: %+v", user)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if created.HashedPassword == "pw1" {
		t.Error("password must not be stored in plaintext")
	}
	if !NewBcryptHasher(bcrypt.MinCost).Compare(created.HashedPassword, "pw1") {
		t.Error("stored hash should verify the original password")
	}
}

func TestRegister_ExistingEmail_ReturnsEmailAlreadyRegistered(t *testing.T) {
	createCalled := false
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email, IsActive: true}, nil
		},
		createFn: func(_ context.Context, _ *model.User) error {
			createCalled = true
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "a@x.com", "pw2")
	assertAPIErrorCode(t, err, model.ErrCodeEmailAlreadyRegistered)
	if createCalled {
		t.Error("Create should not be called for a duplicate email")
	}
}

func TestRegister_ConcurrentDuplicate_MapsUniqueViolation(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return repository.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "a@x.com", "pw")
	assertAPIErrorCode(t, err, model.ErrCodeEmailAlreadyRegistered)
}

func TestRegister_MissingFields_ReturnsInvalidRequest(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.Register(context.Background(), "", "pw")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidRequest)

	_, err = svc.Register(context.Background(), "a@x.com", "")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidRequest)
}

func TestRegister_RepositoryError_IsWrapped(t *testing.T) {
	repoErr := errors.New("connection refused")
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, repoErr
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "a@x.com", "pw")
	if !errors.Is(err, repoErr) {
		t.Errorf("expected wrapped repository error, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	stored := &model.User{ID: 3, Email: "a@x.com", HashedPassword: hashForTest(t, "pw1"), IsActive: true}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	tests := []struct {
		name     string
		email    string
		password string
		wantUser bool
	}{
		{"correct password", "a@x.com", "pw1", true},
		{"wrong password", "a@x.com", "nope", false},
		{"unknown email", "b@x.com", "pw1", false},
		{"email is case sensitive", "A@X.COM", "pw1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if (user != nil) != tt.wantUser {
				t.Errorf("Authenticate() user = %v, wantUser %v", user, tt.wantUser)
			}
		})
	}
}

func TestLogin_ValidCredentials_IssuesBearerTokenForEmail(t *testing.T) {
	stored := &model.User{ID: 3, Email: "a@x.com", HashedPassword: hashForTest(t, "pw1"), IsActive: true}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo)

	token, err := svc.Login(context.Background(), "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token.Type != "bearer" {
		t.Errorf("Type = %q, want %q", token.Type, "bearer")
	}
	if token.Value == "" {
		t.Fatal("expected non-empty token")
	}

	subject, err := svc.tokens.Parse(token.Value)
	if err != nil {
		t.Fatalf("issued token should parse: %v", err)
	}
	if subject != "a@x.com" {
		t.Errorf("subject = %q, want %q", subject, "a@x.com")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	stored := &model.User{ID: 3, Email: "a@x.com", HashedPassword: hashForTest(t, "pw1"), IsActive: true}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "a@x.com", "wrong")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)

	_, err = svc.Login(context.Background(), "ghost@x.com", "pw1")
	assertAPIErrorCode(t, err, model.ErrCodeInvalidCredentials)
}

func TestResolveUser(t *testing.T) {
	active := &model.User{ID: 1, Email: "a@x.com", IsActive: true}
	inactive := &model.User{ID: 2, Email: "off@x.com", IsActive: false}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			switch email {
			case active.Email:
				return active, nil
			case inactive.Email:
				return inactive, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	issue := func(subject string) string {
		v, _, err := svc.tokens.Issue(subject)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		return v
	}

	user, err := svc.ResolveUser(context.Background(), issue(active.Email))
	if err != nil {
		t.Fatalf("ResolveUser() error = %v", err)
	}
	if user.ID != active.ID {
		t.Errorf("user ID = %d, want %d", user.ID, active.ID)
	}

	rejected := map[string]string{
		"empty token":   "",
		"garbage":       "not-a-jwt",
		"deleted user":  issue("gone@x.com"),
		"inactive user": issue(inactive.Email),
	}
	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ResolveUser(context.Background(), token)
			assertAPIErrorCode(t, err, model.ErrCodeUnauthorized)
		})
	}
}
