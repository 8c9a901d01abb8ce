package auth

import (
	"context"
	"testing"

	"github.com/vitrinebr/loja-api/internal/users"
	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/db/dbtest"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/security"
)

func newRegisterService(t *testing.T) (RegisterService, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	svc, err := NewRegisterService(RegisterServiceParams{UserRepo: repo, PasswordConfig: config.PasswordConfig{}})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc, repo
}

func strPtr(value string) *string {
	return &value
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, repo := newRegisterService(t)

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Name:     " João Pereira ",
		Email:    "Joao@Example.com",
		Password: "senha-forte-1",
		CPF:      strPtr("529.982.247-25"),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "joao@example.com" || dto.Name != "João Pereira" || dto.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected user %+v", dto)
	}
	if dto.CPF == nil || *dto.CPF != "52998224725" {
		t.Fatalf("expected normalized cpf, got %v", dto.CPF)
	}

	stored, err := repo.FindByEmail(context.Background(), "joao@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	ok, err := security.VerifyPassword("senha-forte-1", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newRegisterService(t)
	req := RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "senha-forte-1"}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	req.Email = " ANA@example.com"
	_, err := svc.Register(context.Background(), req)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsWeakPasswordAndCPF(t *testing.T) {
	svc, _ := newRegisterService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "curta"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for weak password, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "senha-forte-1",
		CPF:      strPtr("123.456.789-00"),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for cpf, got %v", err)
	}
}
