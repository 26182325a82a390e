package logic

import (
	"context"
	"eum/dao/api"
	"eum/dao/localstore"
	eum "eum/errors"
	"eum/internal/metrics"
	"eum/internal/utils"
	"eum/models"
	"regexp"
	"strings"
	"sync"

	bleveindex "github.com/blevesearch/bleve/v2"
	"github.com/bluele/gcache"
	"github.com/pkg/errors"
)

// Keys the session middleware sets on the gin context.
const (
	ContextSessionKey   = "session"
	ContextUserIDKey    = "user_id"
	ContextAuthErrorKey = "auth_error"
)

var sessionIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{1,64}$`)

// Session is the server side of one browser: its local storage namespace and
// the stores the pages read from.
type Session struct {
	ID        string
	Local     *localstore.Namespaced
	Auth      *Auth
	Posts     *PostStore
	Community *CommunityStore
	Info      *InfoStore
}

// SessionDeps are shared by every session.
type SessionDeps struct {
	Client  *api.Client
	Index   bleveindex.Index
	Store   localstore.Store
	PostCfg PostStoreConfig
}

func NewSession(id string, deps SessionDeps) *Session {
	var local *localstore.Namespaced
	if deps.Store != nil {
		local = localstore.Bind(deps.Store, id)
	}
	posts := NewPostStore(deps.Client, deps.Index, local, deps.PostCfg)
	return &Session{
		ID:        id,
		Local:     local,
		Auth:      NewAuth(local),
		Posts:     posts,
		Community: NewCommunityStore(deps.Client, posts, local, deps.PostCfg.RequestTimeout),
		Info:      NewInfoStore(deps.Client, local),
	}
}

func (s *Session) Season(ctx context.Context) (models.Season, error) {
	if s.Local == nil {
		return models.SeasonSpring, nil
	}
	v, err := s.Local.Get(ctx, localstore.KeySeason)
	if errors.Is(err, eum.ErrNoSuchKey) || v == "" {
		return models.SeasonSpring, nil
	}
	if err != nil {
		return "", errors.Wrap(err, "logic:Season")
	}
	return models.Season(strings.Trim(v, `"`)), nil
}

func (s *Session) SetSeason(ctx context.Context, season models.Season) error {
	if s.Local == nil {
		return nil
	}
	return errors.Wrap(s.Local.Set(ctx, localstore.KeySeason, string(season)), "logic:SetSeason")
}

// SearchScopeOf picks where a board remembers its search. Group boards and
// free boards keep separate searches.
func SearchScopeOf(postType models.PostType) models.SearchScope {
	if postType == models.PostTypeGroup {
		return models.ScopeProGroup
	}
	return models.ScopeProBoard
}

func (s *Session) DTO(ctx context.Context) (*models.SessionDTO, error) {
	season, err := s.Season(ctx)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.Info.LoadBookmarks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "logic:DTO")
	}
	return &models.SessionDTO{
		SessionID: s.ID,
		Season:    season,
		Auth:      s.Auth.State(),
		Bookmarks: bookmarks,
	}, nil
}

// SessionManager keeps live sessions in an LRU. A session evicted for being
// idle is rebuilt from local storage the next time its id shows up.
type SessionManager struct {
	cache gcache.Cache
	deps  SessionDeps

	mu sync.Mutex // 同一个 id 只创建一次
}

func NewSessionManager(cache gcache.Cache, deps SessionDeps) *SessionManager {
	return &SessionManager{cache: cache, deps: deps}
}

var sessionManager *SessionManager

func InitSessionManager(cache gcache.Cache, deps SessionDeps) {
	sessionManager = NewSessionManager(cache, deps)
}

func GetSessionManager() *SessionManager {
	return sessionManager
}

// Get returns the session with id, or eum.ErrNoSuchSession when it is not in
// memory. Every hit restarts the idle timer.
func (m *SessionManager) Get(id string) (*Session, error) {
	v, err := m.cache.Get(id)
	if err != nil {
		return nil, errors.Wrap(eum.ErrNoSuchSession, id)
	}
	// gcache 从 Set 开始计算过期时间，访问时重新 Set 才是按空闲时间过期
	if err := m.cache.Set(id, v); err != nil {
		return nil, errors.Wrap(err, "logic:Get: cache.Set")
	}
	return v.(*Session), nil
}

// Obtain returns the session with id, creating it when needed. A malformed or
// empty id gets a fresh one. created reports whether a new session was built.
func (m *SessionManager) Obtain(id string) (sess *Session, created bool, err error) {
	if !sessionIDPattern.MatchString(id) {
		id = utils.GenSessionID()
	}
	if sess, err := m.Get(id); err == nil {
		return sess, false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, err := m.Get(id); err == nil {
		return sess, false, nil
	}
	sess = NewSession(id, m.deps)
	if err := m.cache.Set(id, sess); err != nil {
		return nil, false, errors.Wrap(err, "logic:Obtain: cache.Set")
	}
	metrics.Sessions.Set(float64(m.cache.Len(true)))
	return sess, true, nil
}

func (m *SessionManager) Remove(id string) {
	m.cache.Remove(id)
	metrics.Sessions.Set(float64(m.cache.Len(true)))
}
