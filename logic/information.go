package logic

import (
	"context"
	"eum/dao/localstore"
	eum "eum/errors"
	"eum/internal/metrics"
	"eum/internal/utils"
	"eum/logger"
	"eum/models"
	"sync"

	"github.com/pkg/errors"
)

type InfoAPI interface {
	GetInformationList(ctx context.Context, category string, page, size int) (*models.InformationPage, error)
	GetInformation(ctx context.Context, id int64) (*models.InformationPost, error)
	ToggleBookmark(ctx context.Context, id int64) error
}

// InfoStore serves information posts and keeps the session's bookmarks. The
// bookmark set lives in local storage under bookmarkedIds and is the only
// source for the Bookmarked flag.
type InfoStore struct {
	api   InfoAPI
	local *localstore.Namespaced

	toggleMu sync.Mutex // 串行化 toggle，保证持久化的集合和内存一致

	mu        sync.Mutex
	loaded    bool
	bookmarks map[int64]struct{}
	lastError string
}

func NewInfoStore(api InfoAPI, local *localstore.Namespaced) *InfoStore {
	return &InfoStore{api: api, local: local, bookmarks: make(map[int64]struct{})}
}

func (s *InfoStore) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	if s.local != nil {
		var ids []int64
		if _, err := s.local.GetJSON(ctx, localstore.KeyBookmarkedIDs, &ids); err != nil {
			return errors.Wrap(err, "logic:InfoStore.load")
		}
		for _, id := range ids {
			s.bookmarks[id] = struct{}{}
		}
	}
	s.loaded = true
	return nil
}

func (s *InfoStore) isBookmarked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bookmarks[id]
	return ok
}

func (s *InfoStore) decorate(post *models.InformationPost) {
	post.PlainText = utils.PlainText(post.Content)
	post.Bookmarked = s.isBookmarked(post.InformationID)
}

func (s *InfoStore) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

// LastError is the message shown for the last failed load, empty after a success.
func (s *InfoStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *InfoStore) FetchList(ctx context.Context, category string, page, size int) (*models.InformationPage, error) {
	if err := s.load(ctx); err != nil {
		logger.Warnf("logic:FetchList: %v", err)
	}
	res, err := s.api.GetInformationList(ctx, category, page, size)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("information_list").Inc()
		s.setError(eum.MsgFetchInfoFailed)
		return nil, errors.Wrap(err, "logic:FetchList")
	}
	for _, post := range res.List {
		s.decorate(post)
	}
	s.setError("")
	return res, nil
}

func (s *InfoStore) Get(ctx context.Context, id int64) (*models.InformationPost, error) {
	if err := s.load(ctx); err != nil {
		logger.Warnf("logic:InfoStore.Get: %v", err)
	}
	post, err := s.api.GetInformation(ctx, id)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("information").Inc()
		if errors.Is(err, eum.ErrNotFound) {
			return nil, errors.Wrap(eum.ErrNoSuchPost, err.Error())
		}
		s.setError(eum.MsgFetchInfoFailed)
		return nil, errors.Wrap(err, "logic:InfoStore.Get")
	}
	s.decorate(post)
	return post, nil
}

func (s *InfoStore) flip(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookmarks[id]; ok {
		delete(s.bookmarks, id)
		return false
	}
	s.bookmarks[id] = struct{}{}
	return true
}

func (s *InfoStore) persist(ctx context.Context) error {
	if s.local == nil {
		return nil
	}
	return s.local.SetJSON(ctx, localstore.KeyBookmarkedIDs, s.Bookmarks())
}

// ToggleBookmark flips the bookmark of id and returns the new state. A backend
// failure restores the previous state locally and in storage.
func (s *InfoStore) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	if err := s.load(ctx); err != nil {
		return false, errors.Wrap(err, "logic:ToggleBookmark: load")
	}

	bookmarked := s.flip(id)
	if err := s.persist(ctx); err != nil {
		s.flip(id)
		return !bookmarked, errors.Wrap(err, "logic:ToggleBookmark: persist")
	}

	if err := s.api.ToggleBookmark(ctx, id); err != nil {
		metrics.BackendErrors.WithLabelValues("toggle_bookmark").Inc()
		s.flip(id)
		if perr := s.persist(ctx); perr != nil {
			logger.Errorf("logic:ToggleBookmark: rollback persist: %v", perr)
		}
		return !bookmarked, errors.Wrap(err, "logic:ToggleBookmark")
	}
	return bookmarked, nil
}

// Bookmarks returns the bookmarked ids in ascending order.
func (s *InfoStore) Bookmarks() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.SortedInt64s(s.bookmarks)
}

// LoadBookmarks makes sure the persisted set has been read.
func (s *InfoStore) LoadBookmarks(ctx context.Context) ([]int64, error) {
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s.Bookmarks(), nil
}
