package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accountsvc/internal/auth"
	"accountsvc/internal/domain"
	"accountsvc/internal/service"
)

func newTestRouter(t *testing.T, users *stubUsersStore, tokens *stubResetTokensStore, sender service.ResetSender) http.Handler {
	t.Helper()

	var creds *service.CredentialsService
	if users != nil {
		creds = &service.CredentialsService{Users: users}
	}
	var reset *service.PasswordResetService
	if tokens != nil {
		reset = &service.PasswordResetService{Store: tokens, Users: users, Sender: sender}
	}

	return NewRouter(RouterOpts{
		Credentials: creds,
		Reset:       reset,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterCreatesUser(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		createUserFunc: func(_ context.Context, email, passwordHash string) (domain.User, error) {
			if email != "player@example.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			if passwordHash == "" {
				t.Fatalf("empty password hash")
			}
			return domain.User{ID: 1, Email: email, Active: true}, nil
		},
	}

	h := newTestRouter(t, users, nil, nil)
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", `{"email":"Player@Example.com","password":"hunter2hunter2"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}

	var got userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != 1 || got.Email != "player@example.com" || !got.IsActive {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newTestRouter(t, &stubUsersStore{t: t}, nil, nil)

	cases := []string{
		`{"email":"not-an-email","password":"hunter2hunter2"}`,
		`{"email":"player@example.com","password":"short"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", body, rec.Code)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		createUserFunc: func(context.Context, string, string) (domain.User, error) {
			return domain.User{}, domain.ErrDuplicateEmail
		},
	}

	h := newTestRouter(t, users, nil, nil)
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", `{"email":"player@example.com","password":"hunter2hunter2"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	active := true
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(_ context.Context, email string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{
				User:         domain.User{ID: 1, Email: email, Active: active},
				PasswordHash: hash,
			}, nil
		},
	}

	h := newTestRouter(t, users, nil, nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/login", `{"email":"player@example.com","password":"hunter2hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/auth/login", `{"email":"player@example.com","password":"wrong password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}

	active = false
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/login", `{"email":"player@example.com","password":"hunter2hunter2"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d body: %s", rec.Code, rec.Body.String())
	}
}
