package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
)

func TestHTTPErrorHandler_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{fmt.Errorf("wrapped: %w", domain.ErrUserNotFound), http.StatusNotFound, "user not found"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{fmt.Errorf("%w: email is required", domain.ErrValidation), http.StatusBadRequest, ""},
		{echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if tc.msg != "" && !strings.Contains(rec.Body.String(), tc.msg) {
			t.Fatalf("%v: expected message %q in %s", tc.err, tc.msg, rec.Body.String())
		}
	}
}

func TestHTTPErrorHandler_HidesUnexpectedErrors(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&buf))(errors.New("mongo: connection reset"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal cause leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "mongo: connection reset") {
		t.Fatalf("expected cause in logs, got %q", buf.String())
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusNoContent)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrUserExists, c)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
