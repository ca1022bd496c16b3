package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/kinmelhq/kinmel-backend/pkg/auth"
	"github.com/kinmelhq/kinmel-backend/pkg/config"
	"github.com/kinmelhq/kinmel-backend/pkg/db/models"
	"github.com/kinmelhq/kinmel-backend/pkg/enums"
	pkgerrors "github.com/kinmelhq/kinmel-backend/pkg/errors"
	"github.com/kinmelhq/kinmel-backend/pkg/security"
)

type stubRepo struct {
	usersByEmail map[string]*models.User
	created      []CreateUserDTO
	createErr    error
	listRows     []models.User
	listErr      error
	deleted      bool
	deleteErr    error
	lastLoginID  uuid.UUID
}

func (s *stubRepo) Create(_ context.Context, dto CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	return user, nil
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(_ context.Context) ([]models.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listRows, nil
}

func (s *stubRepo) Delete(_ context.Context, _ uuid.UUID) (bool, error) {
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	return s.deleted, nil
}

func (s *stubRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, _ time.Time) error {
	s.lastLoginID = id
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "kinmel-api",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:           repo,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestServiceRegisterCreatesBuyer(t *testing.T) {
	repo := &stubRepo{usersByEmail: map[string]*models.User{}}
	svc := buildTestService(t, repo)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "  Buyer@Example.com ",
		Password:  "hunter22",
		FirstName: "Asha",
		LastName:  "Rana",
		Role:      "buyer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if dto.Email != "buyer@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role, got %s", dto.Role)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one create, got %d", len(repo.created))
	}
	if repo.created[0].PasswordHash == "hunter22" {
		t.Fatalf("password stored in plain text")
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "taken@example.com"}
	repo := &stubRepo{usersByEmail: map[string]*models.User{existing.Email: existing}}
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "taken@example.com",
		Password:  "hunter22",
		FirstName: "Asha",
		LastName:  "Rana",
		Role:      "seller",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceRegisterInvalidRole(t *testing.T) {
	repo := &stubRepo{usersByEmail: map[string]*models.User{}}
	svc := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "someone@example.com",
		Password:  "hunter22",
		FirstName: "Asha",
		LastName:  "Rana",
		Role:      "admin",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceLoginMintsToken(t *testing.T) {
	password := "buyer-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	repo := &stubRepo{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role claim, got %s", claims.Role)
	}
	if repo.lastLoginID != user.ID {
		t.Fatalf("expected last login recorded for %s", user.ID)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp on response")
	}
}

func TestServiceLoginUniformFailures(t *testing.T) {
	password := "buyer-secret"
	active := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	inactive := &models.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     false,
	}
	repo := &stubRepo{usersByEmail: map[string]*models.User{
		active.Email:   active,
		inactive.Email: inactive,
	}}
	svc := buildTestService(t, repo)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", password},
		{"wrong password", active.Email, "wrong"},
		{"inactive account", inactive.Email, password},
		{"blank email", "   ", password},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), LoginRequest{Email: tc.email, Password: tc.password})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("expected uniform message, got %q", typed.Message())
			}
		})
	}
}

func TestServiceListOmitsCredentials(t *testing.T) {
	repo := &stubRepo{listRows: []models.User{
		{ID: uuid.New(), Email: "a@example.com", PasswordHash: "hash-a", Role: enums.UserRoleBuyer},
		{ID: uuid.New(), Email: "b@example.com", PasswordHash: "hash-b", Role: enums.UserRoleSeller},
	}}
	svc := buildTestService(t, repo)

	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 users, got %d", len(out))
	}
}

func TestServiceListWrapsStoreFailure(t *testing.T) {
	repo := &stubRepo{listErr: errors.New("connection reset")}
	svc := buildTestService(t, repo)

	_, err := svc.List(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestServiceDelete(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		svc := buildTestService(t, &stubRepo{})
		err := svc.Delete(context.Background(), "not-a-uuid")
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		svc := buildTestService(t, &stubRepo{deleted: false})
		err := svc.Delete(context.Background(), uuid.NewString())
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := buildTestService(t, &stubRepo{deleted: true})
		if err := svc.Delete(context.Background(), uuid.NewString()); err != nil {
			t.Fatalf("delete: %v", err)
		}
	})
}
