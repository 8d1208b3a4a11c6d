package sessionService

import (
	"context"
	"errors"
	"testing"

	"github.com/akraev/folioterm/data/session"
	"github.com/akraev/folioterm/internal/externalApi"
	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/service"
)

type fakeStorage struct {
	values map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{values: map[string]string{}}
}

func (s *fakeStorage) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", session.ErrNotFound
	}
	return v, nil
}

func (s *fakeStorage) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

type fakeApi struct {
	loginErr    error
	logoutErr   error
	logoutCalls int
	token       string
	identity    model.Identity
	authToken   string
}

func (a *fakeApi) Login(_ context.Context, email, _ string) (model.Session, error) {
	if a.loginErr != nil {
		return model.Session{}, a.loginErr
	}
	identity := a.identity
	identity.Email = email
	return model.Session{Token: a.token, Identity: &identity}, nil
}

func (a *fakeApi) Register(ctx context.Context, email, password, fullName string) (model.Session, error) {
	sess, err := a.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	sess.Identity.FullName = fullName
	return sess, nil
}

func (a *fakeApi) Logout(_ context.Context) error {
	a.logoutCalls++
	return a.logoutErr
}

func (a *fakeApi) SetAuthToken(token string) { a.authToken = token }
func (a *fakeApi) ClearAuthToken()           { a.authToken = "" }

func TestLoginThenRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	api := &fakeApi{token: "tok-abc", identity: model.Identity{ID: 7, FullName: "Jane Doe"}}

	svc := New(api, storage)
	svc.Restore(ctx)

	if err := svc.Login(ctx, "jane@example.com", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !svc.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = false after login")
	}
	want := svc.Identity()

	// fresh service over the same storage simulates a process restart
	restoredApi := &fakeApi{}
	restored := New(restoredApi, storage)
	restored.Restore(ctx)

	if !restored.IsAuthenticated() {
		t.Fatal("restored session not authenticated")
	}
	got := restored.Identity()
	if got.ID != want.ID || got.Email != want.Email || got.FullName != want.FullName {
		t.Fatalf("restored identity = %+v, want %+v", got, want)
	}
	if restoredApi.authToken != "tok-abc" {
		t.Fatalf("gateway token after restore = %q, want tok-abc", restoredApi.authToken)
	}
}

func TestRestoreWithCorruptedIdentityClearsStorage(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	storage.values[tokenKey] = "tok123"
	storage.values[identityKey] = "{not json"

	svc := New(&fakeApi{}, storage)
	svc.Restore(ctx)

	if svc.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = true after corrupted restore")
	}
	if _, ok := storage.values[tokenKey]; ok {
		t.Error("token key not cleared")
	}
	if _, ok := storage.values[identityKey]; ok {
		t.Error("identity key not cleared")
	}
}

func TestRestoreWithOnlyTokenClearsStorage(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	storage.values[tokenKey] = "tok123"

	svc := New(&fakeApi{}, storage)
	svc.Restore(ctx)

	if svc.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = true with identity missing")
	}
	if len(storage.values) != 0 {
		t.Fatalf("storage not cleared: %v", storage.values)
	}
}

func TestIsLoadingUntilRestoreFinishes(t *testing.T) {
	svc := New(&fakeApi{}, newFakeStorage())

	if !svc.IsLoading() {
		t.Fatal("IsLoading() = false before Restore")
	}

	svc.Restore(context.Background())

	if svc.IsLoading() {
		t.Fatal("IsLoading() = true after Restore")
	}
}

func TestLoginFailureLeavesSessionUnauthenticated(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	api := &fakeApi{loginErr: externalApi.ErrUnauthorized}

	svc := New(api, storage)
	svc.Restore(ctx)

	err := svc.Login(ctx, "jane@example.com", "wrong")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if svc.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = true after failed login")
	}
	if len(storage.values) != 0 {
		t.Fatalf("storage written on failed login: %v", storage.values)
	}
}

func TestLogoutIsIdempotentAndSwallowsNotifyFailure(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	api := &fakeApi{token: "tok-abc", identity: model.Identity{ID: 7}, logoutErr: errors.New("backend down")}

	svc := New(api, storage)
	svc.Restore(ctx)

	if err := svc.Login(ctx, "jane@example.com", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	svc.Logout(ctx)

	if svc.IsAuthenticated() {
		t.Fatal("still authenticated after logout")
	}
	if len(storage.values) != 0 {
		t.Fatalf("storage not cleared on logout: %v", storage.values)
	}
	if api.authToken != "" {
		t.Fatal("auth token not cleared on logout")
	}

	// second logout on an already-unauthenticated session must not blow up
	svc.Logout(ctx)
	if api.logoutCalls != 2 {
		t.Fatalf("logoutCalls = %d, want 2", api.logoutCalls)
	}
}

func TestRegisterStoresFullName(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	api := &fakeApi{token: "tok-reg", identity: model.Identity{ID: 9}}

	svc := New(api, storage)
	svc.Restore(ctx)

	if err := svc.Register(ctx, "new@example.com", "secret", "New User"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	identity := svc.Identity()
	if identity == nil || identity.FullName != "New User" {
		t.Fatalf("identity = %+v, want FullName = New User", identity)
	}
	if api.authToken != "tok-reg" {
		t.Fatalf("authToken = %q, want tok-reg", api.authToken)
	}
}
