package sessionService

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/akraev/folioterm/data/session"
	"github.com/akraev/folioterm/internal/externalApi"
	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/service"
	"github.com/akraev/folioterm/utils"
)

// Storage keys of the session record. Changing either layout requires
// clearing both, there is no versioning scheme.
const (
	tokenKey    = "auth_token"
	identityKey = "auth_identity"
)

type TrackerApi interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Register(ctx context.Context, email, password, fullName string) (model.Session, error)
	Logout(ctx context.Context) error
	SetAuthToken(token string)
	ClearAuthToken()
}

// SessionService owns the session lifecycle: restore at startup, login and
// register, logout. It is the single writer of session storage and of the
// in-memory session state.
type SessionService struct {
	api     TrackerApi
	storage session.Storage

	mu      sync.RWMutex
	session model.Session
	loading bool
}

func New(api TrackerApi, storage session.Storage) *SessionService {
	return &SessionService{api: api, storage: storage, loading: true}
}

// Restore loads a previously saved session. The session becomes authenticated
// only when both stored values exist and the identity parses; anything less
// clears both keys and leaves the session unauthenticated. Runs once per
// process start, IsLoading reports true until it returns.
func (s *SessionService) Restore(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionService.Restore"

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	slog.Debug("Restore start", slog.String("rqID", rqID), slog.String("op", op))

	token, err := s.storage.Get(ctx, tokenKey)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("can't read stored token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		s.clearStorage(ctx)
		return
	}

	rawIdentity, err := s.storage.Get(ctx, identityKey)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("can't read stored identity", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		s.clearStorage(ctx)
		return
	}

	identity := model.Identity{}
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		slog.Warn("stored identity is corrupted, clearing session", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.clearStorage(ctx)
		return
	}

	s.mu.Lock()
	s.session = model.Session{Token: token, Identity: &identity}
	s.mu.Unlock()

	s.api.SetAuthToken(token)

	slog.Debug("Restore finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", identity.Email))
}

func (s *SessionService) Login(ctx context.Context, email, password string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionService.Login"

	slog.Debug("Login start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Login finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, externalApi.ErrUnauthorized) {
			return service.ErrInvalidCredentials
		}
		slog.Error("got error from api.Login", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return s.adopt(ctx, sess)
}

func (s *SessionService) Register(ctx context.Context, email, password, fullName string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionService.Register"

	slog.Debug("Register start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Register finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	sess, err := s.api.Register(ctx, email, password, fullName)
	if err != nil {
		slog.Error("got error from api.Register", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return s.adopt(ctx, sess)
}

// Logout notifies the backend best-effort, then unconditionally drops the
// local session. Safe to call when already unauthenticated.
func (s *SessionService) Logout(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionService.Logout"

	slog.Debug("Logout start", slog.String("rqID", rqID), slog.String("op", op))

	if err := s.api.Logout(ctx); err != nil {
		slog.Debug("backend logout notify failed, ignoring", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	s.clearStorage(ctx)
	s.api.ClearAuthToken()

	s.mu.Lock()
	s.session = model.Session{}
	s.mu.Unlock()

	slog.Debug("Logout finished", slog.String("rqID", rqID), slog.String("op", op))
}

func (s *SessionService) Identity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session.Identity == nil {
		return nil
	}
	identity := *s.session.Identity
	return &identity
}

// IsAuthenticated is derived from identity presence, it is never stored on
// its own.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated()
}

func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// adopt persists the session returned by the backend and flips the in-memory
// state. Either both keys end up written or both end up cleared.
func (s *SessionService) adopt(ctx context.Context, sess model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SessionService.adopt"

	rawIdentity, err := json.Marshal(sess.Identity)
	if err != nil {
		slog.Error("can't marshal identity", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err := s.storage.Set(ctx, tokenKey, sess.Token); err != nil {
		slog.Error("can't persist token", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.clearStorage(ctx)
		return err
	}

	if err := s.storage.Set(ctx, identityKey, string(rawIdentity)); err != nil {
		slog.Error("can't persist identity", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		s.clearStorage(ctx)
		return err
	}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.api.SetAuthToken(sess.Token)

	return nil
}

func (s *SessionService) clearStorage(ctx context.Context) {
	_ = s.storage.Delete(ctx, tokenKey)
	_ = s.storage.Delete(ctx, identityKey)
}
