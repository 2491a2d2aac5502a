package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"car-price-api/internal/domain"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[strings.ToLower(user.Email)] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Driver@Example.com",
		Password:  "sup3rsecret",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "driver@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "sup3rsecret" {
		t.Fatalf("password not hashed")
	}

	logged, err := svc.Login(context.Background(), "driver@example.com", "sup3rsecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	input := RegisterInput{Email: "driver@example.com", Password: "sup3rsecret", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_RegisterWeakPassword(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	cases := []string{"short1", "allletters", "12345678"}
	for _, password := range cases {
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:    "driver@example.com",
			Password: password,
		})
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q: expected ErrWeakPassword, got %v", password, err)
		}
	}
}

func TestUserService_LoginWrongPassword(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "driver@example.com",
		Password: "sup3rsecret",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "driver@example.com", "wrongpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "sup3rsecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestUserService_GetByID(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "driver@example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.GetByID(context.Background(), user.ID)
	if err != nil || got.ID != user.ID {
		t.Fatalf("get by id: %v %+v", err, got)
	}
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
