package logic

import (
	"context"
	"eum/dao/api"
	"eum/dao/localcache"
	eum "eum/errors"
	"eum/models"
	"sync"
	"testing"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, clock gcache.Clock) *SessionManager {
	t.Helper()
	_, s := newLocal(t, "")
	return NewSessionManager(localcache.NewSessionCache(16, time.Minute, clock), SessionDeps{
		Client:  api.NewClient("http://127.0.0.1:0", time.Second, 0),
		Store:   s,
		PostCfg: testPostCfg(gcache.NewFakeClock()),
	})
}

func TestObtainCreatesAndReusesSessions(t *testing.T) {
	m := newTestManager(t, gcache.NewFakeClock())

	sess, created, err := m.Obtain("")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, sess.ID)

	again, created, err := m.Obtain(sess.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, sess, again)

	bad, created, err := m.Obtain("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "../../etc/passwd", bad.ID)
}

func TestIdleSessionIsRebuiltFromLocalStorage(t *testing.T) {
	ctx := context.Background()
	clock := gcache.NewFakeClock()
	m := newTestManager(t, clock)

	sess, _, err := m.Obtain("abc")
	require.NoError(t, err)
	require.NoError(t, sess.SetSeason(ctx, models.SeasonHanji))

	clock.Advance(2 * time.Minute)
	_, err = m.Get("abc")
	assert.Error(t, err)

	rebuilt, created, err := m.Obtain("abc")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, sess, rebuilt)

	season, err := rebuilt.Season(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonHanji, season)
}

type tokenPostAPI struct {
	mu     sync.Mutex
	tokens map[string]string // category -> 请求携带的 token
}

func (f *tokenPostAPI) GetPosts(ctx context.Context, filter models.PostFilter) (*models.PostPage, error) {
	token, _ := api.TokenFromContext(ctx)
	f.mu.Lock()
	f.tokens[filter.Category] = token
	f.mu.Unlock()
	return &models.PostPage{Posts: []*models.PostSummary{}, Page: filter.Page, Size: filter.Size}, nil
}

func (f *tokenPostAPI) SearchPosts(ctx context.Context, keyword, searchType string, filter models.PostFilter) (*models.PostPage, error) {
	return f.GetPosts(ctx, filter)
}

func TestRequestTokensStayPerRequest(t *testing.T) {
	m := newTestManager(t, gcache.NewFakeClock())
	sess, _, err := m.Obtain("a")
	require.NoError(t, err)

	header := signToken(t, 7, time.Now().Add(time.Hour))
	st, err := sess.Auth.Resolve(context.Background(), "Bearer "+header)
	require.NoError(t, err)
	assert.Equal(t, header, st.Token)
	assert.Empty(t, m.deps.Client.Token(), "resolving must not change the shared client")

	fake := &tokenPostAPI{tokens: make(map[string]string)}
	store := NewPostStore(fake, nil, nil, testPostCfg(gcache.NewFakeClock()))

	var wg sync.WaitGroup
	for category, token := range map[string]string{"생활": header, "모임": ""} {
		wg.Add(1)
		go func(category, token string) {
			defer wg.Done()
			ctx := api.ContextWithToken(context.Background(), token)
			_, err := store.FetchPosts(ctx, models.PostFilter{Category: category}, FetchOptions{})
			assert.NoError(t, err)
		}(category, token)
	}
	wg.Wait()

	assert.Equal(t, header, fake.tokens["생활"])
	assert.Empty(t, fake.tokens["모임"])
}

func TestActiveSessionIsNotExpired(t *testing.T) {
	clock := gcache.NewFakeClock()
	m := newTestManager(t, clock)

	sess, _, err := m.Obtain("active")
	require.NoError(t, err)

	// 每次访问都重新计算空闲时间
	for i := 0; i < 3; i++ {
		clock.Advance(40 * time.Second)
		got, err := m.Get("active")
		require.NoError(t, err)
		assert.Same(t, sess, got)
	}

	clock.Advance(61 * time.Second)
	_, err = m.Get("active")
	assert.True(t, errors.Is(err, eum.ErrNoSuchSession))
}

func TestSessionDTO(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, gcache.NewFakeClock())
	sess, _, err := m.Obtain("dto")
	require.NoError(t, err)

	dto, err := sess.DTO(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dto", dto.SessionID)
	assert.Equal(t, models.SeasonSpring, dto.Season)
	assert.False(t, dto.Auth.Authenticated)
	assert.Empty(t, dto.Bookmarks)
}

func TestWebLogBuffer(t *testing.T) {
	b := NewWebLogBuffer(3)
	for i := 0; i < 4; i++ {
		b.Add(&models.WebLog{LogID: int64(i)})
	}
	assert.Equal(t, 3, b.Len())

	first := b.Drain(2)
	require.Len(t, first, 2)
	assert.Equal(t, int64(0), first[0].LogID)
	rest := b.Drain(0)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(2), rest[0].LogID)
	assert.Zero(t, b.Len())
}
