package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
)

type stubTokenIssuer struct {
	signErr error
	signed  []domain.Claims
}

func (s *stubTokenIssuer) Sign(c domain.Claims) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.signed = append(s.signed, c)
	return "token", nil
}

func (s *stubTokenIssuer) Verify(string) (*domain.Claims, bool) { return nil, false }

func newAuthFixture(t *testing.T) (*AuthService, *UserService, *security.JWTIssuer) {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	users := NewUserService(newStubUserRepo(), hasher)
	issuer, err := security.NewJWTIssuer("secret", security.WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return NewAuthService(users, hasher, issuer), users, issuer
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, users, issuer := newAuthFixture(t)
	ctx := context.Background()

	created, err := users.Create(ctx, bob())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := auth.Login(ctx, "bob", "pw1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.ID != created.ID || user.Username != "bob" {
		t.Fatalf("expected authenticated user, got %+v", user)
	}

	claims, ok := issuer.Verify(token)
	if !ok {
		t.Fatalf("token invalid")
	}
	if claims.Username != "bob" || claims.Role != domain.RoleUser || claims.SubjectID != created.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_InvalidCredentialsIndistinguishable(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	ctx := context.Background()
	_, _ = users.Create(ctx, bob())

	_, _, wrongPass := auth.Login(ctx, "bob", "wrong")
	_, _, noUser := auth.Login(ctx, "ghost", "pw1")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(noUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, noUser)
	}
	if wrongPass.Error() != "invalid username or password" {
		t.Fatalf("unexpected message %q", wrongPass)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	auth, _, _ := newAuthFixture(t)
	if _, _, err := auth.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailureIsNotUnauthorized(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("store down")
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	auth := NewAuthService(NewUserService(repo, hasher), hasher, &stubTokenIssuer{})

	_, _, err := auth.Login(context.Background(), "bob", "pw1")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAuthService_Login_SignsExpectedClaims(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	users := NewUserService(newStubUserRepo(), hasher)
	tokens := &stubTokenIssuer{}
	auth := NewAuthService(users, hasher, tokens)

	admin := bob()
	admin.Role = domain.RoleAdmin
	created, _ := users.Create(context.Background(), admin)

	if _, _, err := auth.Login(context.Background(), "bob", "pw1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(tokens.signed) != 1 {
		t.Fatalf("expected one signed token, got %d", len(tokens.signed))
	}
	got := tokens.signed[0]
	if got.Username != "bob" || got.SubjectID != created.ID || got.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestAuthService_Login_SignFailure(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	users := NewUserService(newStubUserRepo(), hasher)
	auth := NewAuthService(users, hasher, &stubTokenIssuer{signErr: errors.New("boom")})
	_, _ = users.Create(context.Background(), bob())

	if _, user, err := auth.Login(context.Background(), "bob", "pw1"); err == nil || user != nil {
		t.Fatalf("expected sign error and no user, got %+v, %v", user, err)
	}
}
