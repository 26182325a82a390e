package logic

import (
	"context"
	"eum/dao/bleve"
	"eum/dao/localstore"
	eum "eum/errors"
	"eum/models"
	"eum/settings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostAPI struct {
	listCalls   atomic.Int32
	searchCalls atomic.Int32

	mu        sync.Mutex
	listErr   error
	searchErr error
	posts     map[string][]*models.PostSummary // category -> posts
	gates     map[string]chan struct{}         // category -> 放行信号
	entered   chan string
}

func newFakePostAPI() *fakePostAPI {
	return &fakePostAPI{
		posts:   make(map[string][]*models.PostSummary),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (f *fakePostAPI) GetPosts(ctx context.Context, filter models.PostFilter) (*models.PostPage, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	gate := f.gates[filter.Category]
	err := f.listErr
	posts := f.posts[filter.Category]
	f.mu.Unlock()

	select {
	case f.entered <- filter.Category:
	default:
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &models.PostPage{Posts: posts, Total: int64(len(posts)), TotalPages: 1, Page: filter.Page, Size: filter.Size}, nil
}

func (f *fakePostAPI) SearchPosts(ctx context.Context, keyword, searchType string, filter models.PostFilter) (*models.PostPage, error) {
	f.searchCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &models.PostPage{Posts: []*models.PostSummary{{PostID: 99, Title: keyword}}, Total: 1, TotalPages: 1, Page: filter.Page, Size: filter.Size}, nil
}

func (f *fakePostAPI) setPosts(category string, posts ...*models.PostSummary) {
	f.mu.Lock()
	f.posts[category] = posts
	f.mu.Unlock()
}

func (f *fakePostAPI) setListErr(err error) {
	f.mu.Lock()
	f.listErr = err
	f.mu.Unlock()
}

func (f *fakePostAPI) setSearchErr(err error) {
	f.mu.Lock()
	f.searchErr = err
	f.mu.Unlock()
}

func (f *fakePostAPI) gate(category string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[category] = ch
	f.mu.Unlock()
	return ch
}

func testPostCfg(clock gcache.Clock) PostStoreConfig {
	return PostStoreConfig{
		CacheTTL:       5 * time.Second,
		CacheSize:      64,
		PageSize:       20,
		RequestTimeout: 2 * time.Second,
		SearchTimeout:  2 * time.Second,
		OfflineSearch:  true,
		Clock:          clock,
	}
}

func newTestPostStore(t *testing.T) (*PostStore, *fakePostAPI, gcache.FakeClock) {
	t.Helper()
	fake := newFakePostAPI()
	clock := gcache.NewFakeClock()
	return NewPostStore(fake, nil, nil, testPostCfg(clock)), fake, clock
}

func TestFetchPostsServesCacheWithinTTL(t *testing.T) {
	ctx := context.Background()
	store, fake, clock := newTestPostStore(t)
	fake.setPosts("생활", &models.PostSummary{PostID: 1, Title: "a"})

	f := models.PostFilter{Category: "생활", Page: 1}
	page, err := store.FetchPosts(ctx, f, FetchOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)

	clock.Advance(4 * time.Second)
	_, err = store.FetchPosts(ctx, f, FetchOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, fake.listCalls.Load())

	clock.Advance(2 * time.Second) // 超过 5s
	_, err = store.FetchPosts(ctx, f, FetchOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, fake.listCalls.Load())
}

func TestDefaultConfigSharesSlowRequest(t *testing.T) {
	settings.InitSettings("")
	cfg := NewPostStoreConfig()
	fake := newFakePostAPI()
	store := NewPostStore(fake, nil, nil, cfg)
	fake.setPosts("생활", &models.PostSummary{PostID: 1})
	gate := fake.gate("생활")

	f := models.PostFilter{Category: "생활", Page: 1}
	var wg sync.WaitGroup
	fetch := func() {
		defer wg.Done()
		page, err := store.FetchPosts(context.Background(), f, FetchOptions{})
		assert.NoError(t, err)
		assert.Len(t, page.Posts, 1)
	}

	wg.Add(1)
	go fetch()
	<-fake.entered
	time.Sleep(100 * time.Millisecond) // 第一次请求仍未返回
	wg.Add(1)
	go fetch()
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, fake.listCalls.Load())
}

func TestFetchPostsSharesConcurrentRequests(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestPostStore(t)
	fake.setPosts("생활", &models.PostSummary{PostID: 1})
	release := fake.gate("생활")

	f := models.PostFilter{Category: "생활", Page: 1}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := store.FetchPosts(ctx, f, FetchOptions{})
			assert.NoError(t, err)
			if assert.NotNil(t, page) {
				assert.Len(t, page.Posts, 1)
			}
		}()
	}

	<-fake.entered
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, fake.listCalls.Load())
}

func TestFilterChangesPurgeCache(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestPostStore(t)
	fetch := func(f models.PostFilter) {
		_, err := store.FetchPosts(ctx, f, FetchOptions{})
		require.NoError(t, err)
	}

	a1 := models.PostFilter{Category: "A", Page: 1}
	a2 := models.PostFilter{Category: "A", Page: 2}
	fetch(a1)
	fetch(a2)
	fetch(a1) // 翻页不清缓存
	assert.EqualValues(t, 2, fake.listCalls.Load())

	fetch(models.PostFilter{Category: "B", Page: 1})
	fetch(a1)
	assert.EqualValues(t, 4, fake.listCalls.Load())

	fetch(models.PostFilter{Category: "A", Page: 1, Tag: "음식"})
	fetch(a1)
	assert.EqualValues(t, 6, fake.listCalls.Load())

	fetch(models.PostFilter{Category: "A", Page: 1, PostType: models.PostTypeGroup})
	fetch(a1)
	assert.EqualValues(t, 8, fake.listCalls.Load())

	// 排序和地区不清缓存
	fetch(models.PostFilter{Category: "A", Page: 1, SortBy: models.SortViews})
	fetch(models.PostFilter{Category: "A", Page: 1, Location: "서울"})
	fetch(a1)
	assert.EqualValues(t, 10, fake.listCalls.Load())
}

func TestInvalidateDropsCachedPages(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestPostStore(t)
	f := models.PostFilter{Page: 1}

	_, err := store.FetchPosts(ctx, f, FetchOptions{})
	require.NoError(t, err)
	store.Invalidate()
	_, err = store.FetchPosts(ctx, f, FetchOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, fake.listCalls.Load())
}

func TestFetchPostsErrorShowsGenericMessage(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestPostStore(t)
	fake.setPosts("", &models.PostSummary{PostID: 1})

	_, err := store.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)

	fake.setListErr(errors.Wrap(eum.ErrBackend, "status 500"))
	_, err = store.FetchPosts(ctx, models.PostFilter{Page: 2}, FetchOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, eum.ErrBackend))

	st := store.State()
	assert.Equal(t, eum.MsgFetchPostsFailed, st.Error)
	assert.Empty(t, st.Posts)
	assert.False(t, st.Loading)
}

func TestLanguageRefreshKeepsCurrentPage(t *testing.T) {
	ctx := context.Background()
	store, fake, clock := newTestPostStore(t)
	fake.setPosts("", &models.PostSummary{PostID: 1}, &models.PostSummary{PostID: 2})
	f := models.PostFilter{Page: 1}

	_, err := store.FetchPosts(ctx, f, FetchOptions{})
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	fake.setListErr(errors.Wrap(eum.ErrBackend, "status 502"))
	page, err := store.FetchPosts(ctx, f, FetchOptions{LanguageRefresh: true})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)

	st := store.State()
	assert.Empty(t, st.Error)
	assert.Len(t, st.Posts, 2)
	assert.False(t, st.Loading)
}

func TestStaleResponseDoesNotOverwriteNewer(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestPostStore(t)
	fake.setPosts("old", &models.PostSummary{PostID: 1})
	fake.setPosts("new", &models.PostSummary{PostID: 2})
	release := fake.gate("old")

	done := make(chan struct{})
	go func() {
		defer close(done)
		page, err := store.FetchPosts(ctx, models.PostFilter{Category: "old", Page: 1}, FetchOptions{})
		assert.NoError(t, err)
		if assert.NotNil(t, page) {
			assert.Equal(t, int64(1), page.Posts[0].PostID) // 调用方仍然拿到自己的结果
		}
	}()
	require.Equal(t, "old", <-fake.entered)

	_, err := store.FetchPosts(ctx, models.PostFilter{Category: "new", Page: 1}, FetchOptions{})
	require.NoError(t, err)

	close(release)
	<-done

	st := store.State()
	assert.Equal(t, "new", st.Filter.Category)
	require.Len(t, st.Posts, 1)
	assert.Equal(t, int64(2), st.Posts[0].PostID)
	assert.False(t, st.Loading)
}

func TestSearchBlankKeywordListsPosts(t *testing.T) {
	ctx := context.Background()
	store, fake, _ := newTestPostStore(t)
	fake.setPosts("", &models.PostSummary{PostID: 1})

	_, err := store.SearchPosts(ctx, "찾기", "", models.PostFilter{Page: 1})
	require.NoError(t, err)
	assert.True(t, store.State().SearchMode)
	assert.Equal(t, "찾기", store.State().Keyword)

	page, err := store.SearchPosts(ctx, "   ", "", models.PostFilter{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
	assert.EqualValues(t, 1, fake.searchCalls.Load())
	assert.EqualValues(t, 1, fake.listCalls.Load())

	st := store.State()
	assert.False(t, st.SearchMode)
	assert.Empty(t, st.Keyword)
}

func TestSearchFallsBackToServedPosts(t *testing.T) {
	ctx := context.Background()
	index, err := bleve.NewMemIndex()
	require.NoError(t, err)
	defer index.Close()

	fake := newFakePostAPI()
	store := NewPostStore(fake, index, nil, testPostCfg(gcache.NewFakeClock()))
	fake.setPosts("",
		&models.PostSummary{PostID: 1, Title: "김치 만들기", Category: "생활"},
		&models.PostSummary{PostID: 2, Title: "비자 연장", Category: "행정"},
	)
	_, err = store.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)

	fake.setSearchErr(errors.Wrap(eum.ErrTimeout, "search"))
	page, err := store.SearchPosts(ctx, "김치", "", models.PostFilter{Page: 1})
	require.NoError(t, err)
	assert.True(t, page.Offline)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(1), page.Posts[0].PostID)
	assert.True(t, store.State().Offline)

	_, err = store.SearchPosts(ctx, "존재하지않음", "", models.PostFilter{Page: 1})
	require.Error(t, err)
	assert.Equal(t, eum.MsgSearchPostsFailed, store.State().Error)
	assert.Empty(t, store.State().Posts)
}

func TestOfflineSearchOnlyCoversPostsOfThisSession(t *testing.T) {
	ctx := context.Background()
	index, err := bleve.NewMemIndex()
	require.NoError(t, err)
	defer index.Close()

	fakeA, fakeB := newFakePostAPI(), newFakePostAPI()
	a := NewPostStore(fakeA, index, nil, testPostCfg(gcache.NewFakeClock()))
	b := NewPostStore(fakeB, index, nil, testPostCfg(gcache.NewFakeClock()))

	fakeA.setPosts("", &models.PostSummary{PostID: 1, Title: "김치 만들기", Address: "서울 마포구"})
	fakeB.setPosts("", &models.PostSummary{PostID: 2, Title: "김치 찌개", Address: "부산"})
	_, err = a.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)
	_, err = b.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)

	fakeA.setSearchErr(errors.Wrap(eum.ErrTimeout, "search"))
	fakeB.setSearchErr(errors.Wrap(eum.ErrTimeout, "search"))

	page, err := a.SearchPosts(ctx, "김치", "", models.PostFilter{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(1), page.Posts[0].PostID)

	_, err = b.SearchPosts(ctx, "김치", "", models.PostFilter{Page: 1, Location: "서울"})
	require.Error(t, err)

	page, err = b.SearchPosts(ctx, "김치", "", models.PostFilter{Page: 1, Location: "부산"})
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(2), page.Posts[0].PostID)
}

func TestClearSearchLeavesSearchMode(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestPostStore(t)

	_, err := store.SearchPosts(ctx, "keyword", "제목", models.PostFilter{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "제목", store.State().SearchType)

	store.ClearSearch()
	st := store.State()
	assert.False(t, st.SearchMode)
	assert.Empty(t, st.Keyword)
	assert.Empty(t, st.SearchType)
}

func TestSearchStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := localstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	fake := newFakePostAPI()
	store := NewPostStore(fake, nil, localstore.Bind(s, "s1"), testPostCfg(gcache.NewFakeClock()))

	st, err := store.LoadSearchState(ctx, models.ScopeProBoard)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Page)
	assert.Empty(t, st.Keyword)

	_, err = store.SearchPosts(ctx, "비자", "제목", models.PostFilter{Category: "행정", Page: 2})
	require.NoError(t, err)
	require.NoError(t, store.SaveSearchState(ctx, models.ScopeProBoard))

	st, err = store.LoadSearchState(ctx, models.ScopeProBoard)
	require.NoError(t, err)
	assert.Equal(t, "비자", st.Keyword)
	assert.Equal(t, "제목", st.SearchType)
	assert.Equal(t, "행정", st.Filter.Category)
	assert.Equal(t, 2, st.Page)

	other, err := store.LoadSearchState(ctx, models.ScopeProGroup)
	require.NoError(t, err)
	assert.Empty(t, other.Keyword)
}
