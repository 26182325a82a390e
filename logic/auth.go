package logic

import (
	"context"
	"eum/dao/localstore"
	eum "eum/errors"
	"eum/internal/utils"
	"eum/models"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type authUser struct {
	UserID   int64  `json:"userId"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

// authStorage is the persisted shape of the web client's auth store.
type authStorage struct {
	State struct {
		Token           string    `json:"token"`
		User            *authUser `json:"user"`
		IsAuthenticated bool      `json:"isAuthenticated"`
	} `json:"state"`
	Version int `json:"version"`
}

// Auth tracks who a session belongs to. It never touches the backend client:
// the token of a request travels in its context (api.ContextWithToken).
type Auth struct {
	local *localstore.Namespaced
	now   func() time.Time

	mu    sync.Mutex
	state models.AuthState
}

func NewAuth(local *localstore.Namespaced) *Auth {
	return &Auth{local: local, now: time.Now}
}

// BearerToken extracts the token of an Authorization header. An empty header
// or the literal "null" the web client sends before login yield "".
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.Wrap(eum.ErrInvalidToken, "unsupported auth protocol")
	}
	token := strings.TrimSpace(parts[1])
	if token == "null" || token == "undefined" {
		return "", nil
	}
	return token, nil
}

// storedToken looks for a token in auth_token first and then in auth-storage.
func (a *Auth) storedToken(ctx context.Context) (string, string, error) {
	if a.local == nil {
		return "", "", nil
	}
	token, err := a.local.Get(ctx, localstore.KeyAuthToken)
	if err != nil && !errors.Is(err, eum.ErrNoSuchKey) {
		return "", "", errors.Wrap(err, "logic:storedToken: auth_token")
	}
	if token = strings.Trim(token, `" `); token != "" {
		return token, "", nil
	}

	var st authStorage
	if _, err := a.local.GetJSON(ctx, localstore.KeyAuthStorage, &st); err != nil {
		return "", "", errors.Wrap(err, "logic:storedToken: auth-storage")
	}
	nickname := ""
	if st.State.User != nil {
		nickname = utils.Or(st.State.User.Nickname, st.State.User.Name)
	}
	return st.State.Token, nickname, nil
}

// Resolve determines who the session belongs to for this request. header is
// the raw Authorization header and wins over stored tokens. Invalid or expired
// tokens leave the session logged out.
func (a *Auth) Resolve(ctx context.Context, header string) (models.AuthState, error) {
	token, err := BearerToken(header)
	if err != nil {
		a.set(models.AuthState{})
		return models.AuthState{}, err
	}
	nickname := ""
	if token == "" {
		if token, nickname, err = a.storedToken(ctx); err != nil {
			return a.State(), err
		}
	}

	st := models.AuthState{}
	if token != "" {
		claims, err := utils.ParseTokenUnverified(token)
		switch {
		case err != nil:
			a.set(st)
			return st, err
		case claims.Expired(a.now()):
			a.set(st)
			return st, errors.Wrap(eum.ErrExpiredToken, "logic:Resolve")
		}
		st = models.AuthState{
			Token:         token,
			UserID:        claims.UserID,
			Nickname:      utils.Or(claims.Nickname, nickname),
			ExpiresAt:     claims.Expires,
			Authenticated: true,
		}
	}
	a.set(st)
	return st, nil
}

func (a *Auth) set(st models.AuthState) {
	a.mu.Lock()
	a.state = st
	a.mu.Unlock()
}

func (a *Auth) State() models.AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Login stores a token the backend issued, in the layout the web client uses.
func (a *Auth) Login(ctx context.Context, token string) (models.AuthState, error) {
	claims, err := utils.ParseTokenUnverified(token)
	if err != nil {
		return models.AuthState{}, err
	}
	if claims.Expired(a.now()) {
		return models.AuthState{}, errors.Wrap(eum.ErrExpiredToken, "logic:Login")
	}

	if a.local != nil {
		var st authStorage
		st.State.Token = token
		st.State.IsAuthenticated = true
		st.State.User = &authUser{UserID: claims.UserID, Nickname: claims.Nickname}
		if err := a.local.SetJSON(ctx, localstore.KeyAuthStorage, &st); err != nil {
			return models.AuthState{}, errors.Wrap(err, "logic:Login: auth-storage")
		}
		if err := a.local.Set(ctx, localstore.KeyAuthToken, token); err != nil {
			return models.AuthState{}, errors.Wrap(err, "logic:Login: auth_token")
		}
	}
	return a.Resolve(ctx, "")
}

func (a *Auth) Logout(ctx context.Context) error {
	a.set(models.AuthState{})
	if a.local == nil {
		return nil
	}
	if err := a.local.Remove(ctx, localstore.KeyAuthToken); err != nil {
		return errors.Wrap(err, "logic:Logout: auth_token")
	}
	return errors.Wrap(a.local.Remove(ctx, localstore.KeyAuthStorage), "logic:Logout: auth-storage")
}
