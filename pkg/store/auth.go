package store

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"go-rise-platform/internal/domain"
	"go-rise-platform/pkg/client"
	"go-rise-platform/pkg/guard"
	"go-rise-platform/pkg/kv"
	"go-rise-platform/pkg/logger"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoUser           = errors.New("auth response carried no user")
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*client.AuthResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*client.User, error)
	UpdateProfile(ctx context.Context, name string) (*client.User, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// AuthStore holds the signed-in user. It is the client's SessionProvider and
// its OnUnauthorized target.
type AuthStore struct {
	api    AuthAPI
	kv     kv.Store
	notify notifier

	mu          sync.RWMutex
	user        *client.User
	token       string
	initialized bool
	loading     bool
	err         string
}

func NewAuthStore(api AuthAPI, store kv.Store, bus EventBus.Bus) *AuthStore {
	return &AuthStore{api: api, kv: store, notify: notifier{bus: bus}}
}

// Init restores a persisted session. A broken stored session is cleared.
func (s *AuthStore) Init(ctx context.Context) error {
	token, ok, err := s.kv.Get(ctx, kv.KeyAuthToken)
	if err != nil {
		return err
	}
	var user client.User
	found := false
	if ok && token != "" {
		found, err = kv.GetJSON(ctx, s.kv, kv.KeyAuthUser, &user)
		if err != nil {
			logger.Log.Warn("stored session is unreadable, clearing it", "error", err)
			found = false
			s.clearPersisted(ctx)
		}
	}

	s.mu.Lock()
	if found {
		s.user = &user
		s.token = token
	}
	s.initialized = true
	s.mu.Unlock()

	s.publish()
	return nil
}

func (s *AuthStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *AuthStore) finish(err error, fallback string) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = apiMessage(err, fallback)
	}
	s.mu.Unlock()
}

func apiMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (s *AuthStore) Login(ctx context.Context, email, password string) (*client.AuthResult, error) {
	s.begin()
	res, err := s.api.Login(ctx, email, password)
	if err == nil && (res == nil || res.User == nil) {
		err = ErrNoUser
	}
	s.finish(err, "Login failed")
	if err != nil {
		return nil, err
	}
	return res, s.setAuth(ctx, res)
}

func (s *AuthStore) Register(ctx context.Context, name, email, password string) (*client.AuthResult, error) {
	s.begin()
	res, err := s.api.Register(ctx, name, email, password)
	if err == nil && (res == nil || res.User == nil) {
		err = ErrNoUser
	}
	s.finish(err, "Registration failed")
	if err != nil {
		return nil, err
	}
	return res, s.setAuth(ctx, res)
}

func (s *AuthStore) setAuth(ctx context.Context, res *client.AuthResult) error {
	s.mu.Lock()
	user := *res.User
	s.user = &user
	s.token = res.Token
	s.initialized = true
	s.mu.Unlock()

	defer s.publish()
	if err := s.kv.Set(ctx, kv.KeyAuthToken, res.Token); err != nil {
		return errors.Wrap(err, "persist token")
	}
	return errors.Wrap(kv.SetJSON(ctx, s.kv, kv.KeyAuthUser, user), "persist user")
}

// Logout tells the server when a session exists, ignores its answer and
// always clears local state.
func (s *AuthStore) Logout(ctx context.Context) {
	if s.Token() != "" {
		if err := s.api.Logout(ctx); err != nil {
			logger.Log.Debug("server logout failed", "error", err)
		}
	}
	s.ClearAuth(ctx)
}

// RefreshProfile reloads the user. Without a token it returns nil; a 401 clears the session.
func (s *AuthStore) RefreshProfile(ctx context.Context) (*client.User, error) {
	if s.Token() == "" {
		return nil, nil
	}
	s.begin()
	user, err := s.api.Profile(ctx)
	s.finish(err, "Failed to get user profile")
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.ClearAuth(ctx)
		}
		return nil, err
	}
	return user, s.storeUser(ctx, user)
}

func (s *AuthStore) UpdateProfile(ctx context.Context, name string) (*client.User, error) {
	if s.Token() == "" {
		return nil, ErrNotAuthenticated
	}
	s.begin()
	user, err := s.api.UpdateProfile(ctx, name)
	s.finish(err, "Failed to update profile")
	if err != nil {
		return nil, err
	}
	return user, s.storeUser(ctx, user)
}

func (s *AuthStore) ChangePassword(ctx context.Context, current, next string) error {
	if s.Token() == "" {
		return ErrNotAuthenticated
	}
	s.begin()
	err := s.api.ChangePassword(ctx, current, next)
	s.finish(err, "Failed to change password")
	return err
}

func (s *AuthStore) storeUser(ctx context.Context, user *client.User) error {
	s.mu.Lock()
	u := *user
	s.user = &u
	s.mu.Unlock()

	s.publish()
	return kv.SetJSON(ctx, s.kv, kv.KeyAuthUser, u)
}

// ClearAuth drops the session from memory and persistence.
func (s *AuthStore) ClearAuth(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.err = ""
	s.initialized = true
	s.mu.Unlock()

	s.clearPersisted(ctx)
	s.publish()
}

func (s *AuthStore) clearPersisted(ctx context.Context) {
	for _, key := range []string{kv.KeyAuthToken, kv.KeyAuthUser} {
		if err := s.kv.Delete(ctx, key); err != nil {
			logger.Log.Warn("failed to remove stored session", "key", key, "error", err)
		}
	}
}

// HandleUnauthorized is the forced logout run when the API answers 401.
func (s *AuthStore) HandleUnauthorized() {
	s.ClearAuth(context.Background())
}

func (s *AuthStore) publish() {
	s.notify.publish(TopicAuthChanged, AuthChanged{Status: s.Status(), UserID: s.userID()})
}

func (s *AuthStore) userID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *AuthStore) User() *client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *AuthStore) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == domain.RoleAdmin
}

func (s *AuthStore) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *AuthStore) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.initialized:
		return guard.StatusLoading
	case s.user != nil:
		return guard.StatusAuthenticated
	}
	return guard.StatusUnauthenticated
}

// Initials are the first letters of the first two words of the name, or "U".
func (s *AuthStore) Initials() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return "U"
	}
	var initials []rune
	for _, word := range strings.Fields(s.user.Name) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "U"
	}
	return string(initials)
}

func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *AuthStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
