package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/99minutos/identity-service/internal/core/domain"
)

var adminClaims = &domain.Claims{Username: "root", SubjectID: 1, Role: domain.RoleAdmin}

func TestUserHandler_RequiresClaims(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, nil)

	c, _ := newTestContext(http.MethodGet, "/users", "", nil)
	if err := h.List(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserHandler_Create(t *testing.T) {
	audit := &recordingAudit{}
	users := &stubUserService{
		createFn: func(_ context.Context, candidate domain.NewUser) (*domain.User, error) {
			if candidate.Role != domain.RoleAdmin || candidate.Status != domain.StatusInactive {
				t.Fatalf("unexpected candidate: %+v", candidate)
			}
			return storedUser(9, candidate.Username, domain.RoleAdmin), nil
		},
	}
	h := NewUserHandler(users, audit)

	c, rec := newTestContext(http.MethodPost, "/users",
		`{"username":"ann","email":"a@x.com","password":"pw","role":"ADMIN","status":"INACTIVE"}`, adminClaims)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ev := audit.last(t); ev.ActorID != 1 || ev.SubjectID != 9 || ev.Type != domain.AuditUserCreated {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestUserHandler_List(t *testing.T) {
	users := &stubUserService{
		findAllFn: func(context.Context) ([]*domain.User, error) {
			return []*domain.User{storedUser(1, "root", domain.RoleSuperAdmin), storedUser(2, "bob", domain.RoleUser)}, nil
		},
	}
	h := NewUserHandler(users, nil)

	c, rec := newTestContext(http.MethodGet, "/users", "", &domain.Claims{Username: "bob", Role: domain.RoleUser})
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[1]["username"] != "bob" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp[0]["created_at"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected created_at: %v", resp[0]["created_at"])
	}
	if _, ok := resp[0]["password_hash"]; ok {
		t.Fatalf("password hash leaked")
	}
}

func TestUserHandler_List_EmptyIsArray(t *testing.T) {
	users := &stubUserService{
		findAllFn: func(context.Context) ([]*domain.User, error) { return nil, nil },
	}
	h := NewUserHandler(users, nil)

	c, rec := newTestContext(http.MethodGet, "/users", "", adminClaims)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestUserHandler_Get(t *testing.T) {
	users := &stubUserService{
		findByIDFn: func(_ context.Context, id int64) (*domain.User, error) {
			if id != 5 {
				return nil, domain.ErrUserNotFound
			}
			return storedUser(5, "eve", domain.RoleUser), nil
		},
	}
	h := NewUserHandler(users, nil)

	c, rec := newTestContext(http.MethodGet, "/users/5", "", adminClaims)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodGet, "/users/6", "", adminClaims)
	c.SetParamNames("id")
	c.SetParamValues("6")
	if err := h.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_BadID(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, nil)

	for _, raw := range []string{"abc", "0", "-3"} {
		c, _ := newTestContext(http.MethodDelete, "/users/"+raw, "", adminClaims)
		c.SetParamNames("id")
		c.SetParamValues(raw)
		if err := h.Delete(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%q: expected ErrValidation, got %v", raw, err)
		}
	}
}

func TestUserHandler_Update_Partial(t *testing.T) {
	audit := &recordingAudit{}
	users := &stubUserService{
		updateFn: func(_ context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
			if id != 3 {
				t.Fatalf("unexpected id %d", id)
			}
			if patch.Email == nil || *patch.Email != "new@x.com" {
				t.Fatalf("email not forwarded: %+v", patch)
			}
			if patch.Role == nil || *patch.Role != domain.RoleAdmin {
				t.Fatalf("role not normalised: %+v", patch.Role)
			}
			if patch.Password != nil || patch.FirstName != nil || patch.Status != nil {
				t.Fatalf("unexpected fields set: %+v", patch)
			}
			u := storedUser(3, "bob", domain.RoleAdmin)
			u.Email = *patch.Email
			return u, nil
		},
	}
	h := NewUserHandler(users, audit)

	c, rec := newTestContext(http.MethodPatch, "/users/3", `{"email":"new@x.com","role":"admin"}`, adminClaims)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ev := audit.last(t); ev.Type != domain.AuditUserUpdated || ev.SubjectID != 3 {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestUserHandler_Update_RejectsUsername(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, nil)

	c, _ := newTestContext(http.MethodPatch, "/users/3", `{"username":"mallory"}`, adminClaims)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.Update(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUserHandler_Update_InvalidFields(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, nil)

	for _, body := range []string{`{"email":"nope"}`, `{"role":"ROOT"}`, `{"status":"x"}`} {
		c, _ := newTestContext(http.MethodPatch, "/users/3", body, adminClaims)
		c.SetParamNames("id")
		c.SetParamValues("3")
		if err := h.Update(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestUserHandler_Delete(t *testing.T) {
	audit := &recordingAudit{}
	var removed int64
	users := &stubUserService{
		removeFn: func(_ context.Context, id int64) (*domain.User, error) {
			removed = id
			return storedUser(id, "bob", domain.RoleUser), nil
		},
	}
	h := NewUserHandler(users, audit)

	c, rec := newTestContext(http.MethodDelete, "/users/4", "", adminClaims)
	c.SetParamNames("id")
	c.SetParamValues("4")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || removed != 4 {
		t.Fatalf("expected 204 removing 4, got %d removing %d", rec.Code, removed)
	}
	if ev := audit.last(t); ev.Type != domain.AuditUserDeleted || ev.ActorID != 1 || ev.SubjectID != 4 || ev.Username != "bob" {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	users := &stubUserService{
		removeFn: func(context.Context, int64) (*domain.User, error) { return nil, domain.ErrUserNotFound },
	}
	h := NewUserHandler(users, nil)

	c, _ := newTestContext(http.MethodDelete, "/users/4", "", adminClaims)
	c.SetParamNames("id")
	c.SetParamValues("4")
	if err := h.Delete(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
