package logic

import (
	"context"
	"eum/dao/api"
	"eum/dao/bleve"
	"eum/dao/localcache"
	"eum/dao/localstore"
	eum "eum/errors"
	"eum/internal/metrics"
	"eum/internal/utils"
	"eum/logger"
	"eum/models"
	"fmt"
	"sync"
	"time"

	bleveindex "github.com/blevesearch/bleve/v2"
	"github.com/bluele/gcache"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/sync/singleflight"
)

const defaultRequestTimeout = 10 * time.Second

// PostAPI is the part of the backend client the listing store needs.
type PostAPI interface {
	GetPosts(ctx context.Context, f models.PostFilter) (*models.PostPage, error)
	SearchPosts(ctx context.Context, keyword, searchType string, f models.PostFilter) (*models.PostPage, error)
}

type PostStoreConfig struct {
	CacheTTL       time.Duration
	CacheSize      int
	PageSize       int
	RequestTimeout time.Duration
	SearchTimeout  time.Duration
	OfflineSearch  bool
	Clock          gcache.Clock
}

func NewPostStoreConfig() PostStoreConfig {
	return PostStoreConfig{
		CacheTTL:       time.Duration(viper.GetInt64("store.cache_ttl")) * time.Second,
		CacheSize:      viper.GetInt("store.cache_size"),
		PageSize:       viper.GetInt("store.page_size"),
		RequestTimeout: time.Duration(viper.GetInt64("api.timeout")) * time.Second,
		SearchTimeout:  time.Duration(viper.GetInt64("store.search_timeout")) * time.Second,
		OfflineSearch:  viper.GetBool("store.offline_search"),
		Clock:          gcache.NewRealClock(),
	}
}

type FetchOptions struct {
	// LanguageRefresh marks the refetch that follows a UI language switch.
	// Its failures are swallowed so the page keeps what it already shows.
	LanguageRefresh bool
}

// PostStore holds the post listing of one session: the page on screen, a short
// lived page cache and the in-flight requests.
type PostStore struct {
	api   PostAPI
	index bleveindex.Index // 可以为 nil
	local *localstore.Namespaced
	cfg   PostStoreConfig

	cache gcache.Cache
	sfGrp singleflight.Group

	mu            sync.Mutex
	lastFilter    *models.PostFilter
	lastRequestID uint64
	state         models.StoreState
	seen          map[int64]struct{} // 本会话见过的帖子，离线搜索只在其中查找
}

func NewPostStore(api PostAPI, index bleveindex.Index, local *localstore.Namespaced, cfg PostStoreConfig) *PostStore {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.Clock == nil {
		cfg.Clock = gcache.NewRealClock()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = cfg.RequestTimeout
	}
	return &PostStore{
		api:   api,
		index: index,
		local: local,
		cfg:   cfg,
		cache: localcache.NewPageCache(cfg.CacheSize, cfg.CacheTTL, cfg.Clock),
		state: models.StoreState{Posts: []*models.PostSummary{}, Page: 1},
		seen:  make(map[int64]struct{}),
	}
}

func (p *PostStore) normalizeFilter(f models.PostFilter) models.PostFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = p.cfg.PageSize
	}
	if f.Size <= 0 {
		f.Size = 20
	}
	if f.SortBy == "" {
		f.SortBy = models.SortLatest
	}
	return f
}

func pageCacheKey(f models.PostFilter) string {
	return fmt.Sprintf("%d_%d_%s_%s_%s_%s_%s", f.Page, f.Size, f.Category, f.SortBy, f.Location, f.PostType, f.Tag)
}

// begin registers a new request and returns its id. Only the request holding
// the newest id may write the observable state.
func (p *PostStore) begin(f models.PostFilter, searchMode bool, keyword, searchType string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastFilter != nil && (p.lastFilter.Category != f.Category ||
		p.lastFilter.Tag != f.Tag || p.lastFilter.PostType != f.PostType) {
		p.cache.Purge()
		metrics.PageCache.WithLabelValues("purge").Inc()
	}
	last := f
	p.lastFilter = &last

	p.lastRequestID++
	p.state.Loading = true
	p.state.Filter = f
	p.state.SearchMode = searchMode
	p.state.Keyword = keyword
	p.state.SearchType = searchType
	return p.lastRequestID
}

func (p *PostStore) apply(reqID uint64, page *models.PostPage, errMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if reqID != p.lastRequestID {
		return // 已经有更新的请求，丢弃过期响应
	}

	p.state.Loading = false
	p.state.Error = errMsg
	if page == nil {
		p.state.Posts = []*models.PostSummary{}
		p.state.Total = 0
		p.state.TotalPages = 0
		p.state.Offline = false
		return
	}
	p.state.Posts = append(make([]*models.PostSummary, 0, len(page.Posts)), page.Posts...)
	p.state.Total = page.Total
	p.state.TotalPages = page.TotalPages
	p.state.Page = page.Page
	p.state.Offline = page.Offline
}

// keep ends a request without touching what the page shows.
func (p *PostStore) keep(reqID uint64) *models.PostPage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if reqID == p.lastRequestID {
		p.state.Loading = false
	}
	return &models.PostPage{
		Posts:      append([]*models.PostSummary{}, p.state.Posts...),
		Total:      p.state.Total,
		TotalPages: p.state.TotalPages,
		Page:       p.state.Page,
		Size:       p.state.Filter.Size,
		Offline:    p.state.Offline,
	}
}

// FetchPosts loads one page of the board in browse mode. Identical requests
// within the cache TTL are served from memory and concurrent identical requests
// share one backend call.
func (p *PostStore) FetchPosts(ctx context.Context, f models.PostFilter, opts FetchOptions) (*models.PostPage, error) {
	f = p.normalizeFilter(f)
	key := pageCacheKey(f)
	reqID := p.begin(f, false, "", "")

	if cached, err := p.cache.Get(key); err == nil {
		metrics.PageCache.WithLabelValues("hit").Inc()
		page := cached.(*models.PostPage)
		p.apply(reqID, page, "")
		return page, nil
	}
	metrics.PageCache.WithLabelValues("miss").Inc()

	v, shared, err := utils.SfDoWithTimeout(ctx, &p.sfGrp, "list_"+key, p.cfg.RequestTimeout, func() (any, error) {
		// 请求被多个调用方共享，不能跟随某一个调用方的 ctx 取消
		reqCtx, cancel := context.WithTimeout(api.Detach(ctx), p.cfg.RequestTimeout)
		defer cancel()
		page, err := p.api.GetPosts(reqCtx, f)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(key, page); err != nil {
			logger.Warnf("logic:FetchPosts: cache.Set: %v", err)
		}
		p.indexPosts(page.Posts)
		return page, nil
	})
	if shared {
		metrics.PageCache.WithLabelValues("shared").Inc()
	}

	if err != nil {
		metrics.BackendErrors.WithLabelValues("get_posts").Inc()
		if opts.LanguageRefresh {
			logger.Debugf("logic:FetchPosts: suppressed error during language refresh: %v", err)
			return p.keep(reqID), nil
		}
		logger.ErrorWithStack(err)
		p.apply(reqID, nil, eum.MsgFetchPostsFailed)
		return nil, errors.Wrap(err, "logic:FetchPosts")
	}

	page := v.(*models.PostPage)
	p.apply(reqID, page, "")
	return page, nil
}

// SearchPosts enters search mode. A blank keyword is a plain listing. When the
// backend fails or times out, posts this gateway has already served answer
// the query.
func (p *PostStore) SearchPosts(ctx context.Context, keyword, searchType string, f models.PostFilter) (*models.PostPage, error) {
	if utils.IsBlank(keyword) {
		metrics.Search.WithLabelValues("fallback_list").Inc()
		p.ClearSearch()
		return p.FetchPosts(ctx, f, FetchOptions{})
	}

	f = p.normalizeFilter(f)
	reqID := p.begin(f, true, keyword, searchType)

	sfKey := fmt.Sprintf("search_%s_%s_%s", keyword, searchType, pageCacheKey(f))
	v, _, err := utils.SfDoWithTimeout(ctx, &p.sfGrp, sfKey, p.cfg.SearchTimeout, func() (any, error) {
		reqCtx, cancel := context.WithTimeout(api.Detach(ctx), p.cfg.SearchTimeout)
		defer cancel()
		page, err := p.api.SearchPosts(reqCtx, keyword, searchType, f)
		if err != nil {
			return nil, err
		}
		p.indexPosts(page.Posts)
		return page, nil
	})
	if err == nil {
		metrics.Search.WithLabelValues("backend").Inc()
		page := v.(*models.PostPage)
		p.apply(reqID, page, "")
		return page, nil
	}

	metrics.BackendErrors.WithLabelValues("search_posts").Inc()
	logger.Warnf("logic:SearchPosts: backend search failed: %v", err)

	if page := p.searchOffline(keyword, f); page != nil {
		metrics.Search.WithLabelValues("offline").Inc()
		p.apply(reqID, page, "")
		return page, nil
	}

	metrics.Search.WithLabelValues("failed").Inc()
	p.apply(reqID, nil, eum.MsgSearchPostsFailed)
	return nil, errors.Wrap(err, "logic:SearchPosts")
}

func (p *PostStore) searchOffline(keyword string, f models.PostFilter) *models.PostPage {
	if !p.cfg.OfflineSearch || p.index == nil {
		return nil
	}
	posts, total, err := bleve.SearchPosts(p.index, keyword, f, p.seenIDs())
	if err != nil {
		logger.Warnf("logic:searchOffline: %v", err)
		return nil
	}
	if total == 0 {
		return nil
	}
	totalPages := (total + f.Size - 1) / f.Size
	return &models.PostPage{
		Posts:      posts,
		Total:      int64(total),
		TotalPages: totalPages,
		Page:       f.Page,
		Size:       f.Size,
		Offline:    true,
	}
}

func (p *PostStore) indexPosts(posts []*models.PostSummary) {
	if p.index == nil {
		return
	}
	p.mu.Lock()
	for _, post := range posts {
		p.seen[post.PostID] = struct{}{}
	}
	p.mu.Unlock()
	if err := bleve.IndexPosts(p.index, posts); err != nil {
		logger.Warnf("logic:indexPosts: %v", err)
	}
}

// ClearSearch leaves search mode. The next FetchPosts restores the listing.
func (p *PostStore) ClearSearch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.SearchMode = false
	p.state.Keyword = ""
	p.state.SearchType = ""
	p.state.Error = ""
	p.state.Offline = false
}

// Invalidate drops every cached page, e.g. after a post was written.
func (p *PostStore) Invalidate() {
	p.cache.Purge()
	metrics.PageCache.WithLabelValues("purge").Inc()
}

func (p *PostStore) State() models.StoreState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state
	st.Posts = append(make([]*models.PostSummary, 0, len(p.state.Posts)), p.state.Posts...)
	return st
}

// patchPost replaces the listed post with id by a patched copy. Cached pages
// are shared, so they are never modified in place.
func (p *PostStore) patchPost(id int64, patch func(*models.PostSummary)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, post := range p.state.Posts {
		if post.PostID == id {
			cp := *post
			patch(&cp)
			p.state.Posts[i] = &cp
			return true
		}
	}
	return false
}

func (p *PostStore) removePost(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	posts := make([]*models.PostSummary, 0, len(p.state.Posts))
	for _, post := range p.state.Posts {
		if post.PostID != id {
			posts = append(posts, post)
		}
	}
	if len(posts) != len(p.state.Posts) && p.state.Total > 0 {
		p.state.Total--
	}
	p.state.Posts = posts
	delete(p.seen, id)
	if p.index != nil {
		if err := bleve.DeletePost(p.index, id); err != nil {
			logger.Warnf("logic:removePost: %v", err)
		}
	}
}

func (p *PostStore) seenIDs() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, 0, len(p.seen))
	for id := range p.seen {
		ids = append(ids, id)
	}
	return ids
}

// seenPosts returns the listed posts plus every page still cached.
func (p *PostStore) seenPosts() []*models.PostSummary {
	posts := p.State().Posts
	for _, v := range p.cache.GetALL(true) {
		if page, ok := v.(*models.PostPage); ok {
			posts = append(posts, page.Posts...)
		}
	}
	return posts
}

// SaveSearchState remembers the current search under scope so the board can
// restore it on the next visit.
func (p *PostStore) SaveSearchState(ctx context.Context, scope models.SearchScope) error {
	st := p.State()
	return p.PutSearchState(ctx, scope, &models.SearchState{
		Keyword:    st.Keyword,
		SearchType: st.SearchType,
		Filter:     st.Filter,
		Page:       st.Page,
	})
}

func (p *PostStore) PutSearchState(ctx context.Context, scope models.SearchScope, st *models.SearchState) error {
	if p.local == nil {
		return nil
	}
	return errors.Wrap(p.local.SetJSON(ctx, string(scope), st), "logic:PutSearchState")
}

// LoadSearchState returns the remembered search of scope, or an empty state.
func (p *PostStore) LoadSearchState(ctx context.Context, scope models.SearchScope) (*models.SearchState, error) {
	st := &models.SearchState{Page: 1}
	if p.local == nil {
		return st, nil
	}
	if _, err := p.local.GetJSON(ctx, string(scope), st); err != nil {
		return nil, errors.Wrap(err, "logic:LoadSearchState")
	}
	return st, nil
}
