package logic

import (
	"context"
	"eum/dao/api"
	"eum/dao/localcache"
	"eum/dao/localstore"
	eum "eum/errors"
	"eum/internal/metrics"
	"eum/internal/utils"
	"eum/logger"
	"eum/models"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// CommunityAPI is the part of the backend client used for post detail and writes.
type CommunityAPI interface {
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
	CreatePost(ctx context.Context, params *models.ParamCreatePost, files []api.FileUpload) (*models.Post, error)
	UpdatePost(ctx context.Context, postID int64, params *models.ParamUpdatePost, files []api.FileUpload) (*models.Post, error)
	DeletePost(ctx context.Context, postID int64) error
	ReactToPost(ctx context.Context, postID int64, emotion models.Emotion) (*models.EmotionResult, error)
	GetRecommendations(ctx context.Context, postID int64) ([]*models.PostSummary, error)
	GetWrittenPosts(ctx context.Context, page, size int) (*models.PostPage, error)
}

// CommunityStore holds the post a session is reading and performs writes that
// affect the listing.
type CommunityStore struct {
	api     CommunityAPI
	posts   *PostStore
	local   *localstore.Namespaced
	timeout time.Duration

	sfGrp singleflight.Group

	mu      sync.Mutex
	current *models.Post
}

func NewCommunityStore(api CommunityAPI, posts *PostStore, local *localstore.Namespaced, timeout time.Duration) *CommunityStore {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &CommunityStore{api: api, posts: posts, local: local, timeout: timeout}
}

func (c *CommunityStore) Current() *models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

func (c *CommunityStore) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	v, _, err := utils.SfDoWithTimeout(ctx, &c.sfGrp, "post_"+strconv.FormatInt(postID, 10), c.timeout, func() (any, error) {
		reqCtx, cancel := context.WithTimeout(api.Detach(ctx), c.timeout)
		defer cancel()
		return c.api.GetPost(reqCtx, postID)
	})
	if err != nil {
		metrics.BackendErrors.WithLabelValues("get_post").Inc()
		if errors.Is(err, eum.ErrNotFound) {
			return nil, errors.Wrap(eum.ErrNoSuchPost, err.Error())
		}
		return nil, errors.Wrap(err, "logic:GetPost")
	}

	post := v.(*models.Post)
	cp := *post
	c.mu.Lock()
	c.current = &cp
	c.mu.Unlock()
	return post, nil
}

// afterWrite drops every cached listing and asks the category menus to reload.
func (c *CommunityStore) afterWrite(ctx context.Context) {
	c.posts.Invalidate()
	if c.local == nil {
		return
	}
	if err := c.local.Set(ctx, localstore.KeyNeedRefreshCategories, "true"); err != nil {
		logger.Warnf("logic:afterWrite: set %s: %v", localstore.KeyNeedRefreshCategories, err)
	}
}

// ConsumeNeedRefresh reports whether categories must be reloaded and clears the flag.
func (c *CommunityStore) ConsumeNeedRefresh(ctx context.Context) (bool, error) {
	if c.local == nil {
		return false, nil
	}
	v, err := c.local.Get(ctx, localstore.KeyNeedRefreshCategories)
	if errors.Is(err, eum.ErrNoSuchKey) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "logic:ConsumeNeedRefresh: Get")
	}
	if err := c.local.Remove(ctx, localstore.KeyNeedRefreshCategories); err != nil {
		return false, errors.Wrap(err, "logic:ConsumeNeedRefresh: Remove")
	}
	return v == "true", nil
}

func (c *CommunityStore) CreatePost(ctx context.Context, params *models.ParamCreatePost, files []api.FileUpload) (*models.Post, error) {
	if params.PostType == "" {
		params.PostType = models.PostTypeFree
	}
	if params.Category == "" {
		params.Category = api.DefaultCategory
	}
	post, err := c.api.CreatePost(ctx, params, files)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("create_post").Inc()
		return nil, errors.Wrap(err, "logic:CreatePost")
	}
	c.afterWrite(ctx)
	return post, nil
}

func (c *CommunityStore) UpdatePost(ctx context.Context, postID int64, params *models.ParamUpdatePost, files []api.FileUpload) (*models.Post, error) {
	post, err := c.api.UpdatePost(ctx, postID, params, files)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("update_post").Inc()
		if errors.Is(err, eum.ErrNotFound) {
			return nil, errors.Wrap(eum.ErrNoSuchPost, err.Error())
		}
		return nil, errors.Wrap(err, "logic:UpdatePost")
	}

	c.mu.Lock()
	if c.current != nil && c.current.PostID == postID {
		cp := *post
		c.current = &cp
	}
	c.mu.Unlock()
	c.afterWrite(ctx)
	return post, nil
}

func (c *CommunityStore) DeletePost(ctx context.Context, postID int64) error {
	if err := c.api.DeletePost(ctx, postID); err != nil {
		metrics.BackendErrors.WithLabelValues("delete_post").Inc()
		if errors.Is(err, eum.ErrNotFound) {
			return errors.Wrap(eum.ErrNoSuchPost, err.Error())
		}
		return errors.Wrap(err, "logic:DeletePost")
	}

	c.mu.Lock()
	if c.current != nil && c.current.PostID == postID {
		c.current = nil
	}
	c.mu.Unlock()
	c.posts.removePost(postID)
	c.afterWrite(ctx)
	return nil
}

// React sends a like or dislike and copies the counts the backend returns onto
// the open post and the listed one.
func (c *CommunityStore) React(ctx context.Context, postID int64, emotion models.Emotion) (*models.EmotionResult, error) {
	res, err := c.api.ReactToPost(ctx, postID, emotion)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("react").Inc()
		if errors.Is(err, eum.ErrNotFound) {
			return nil, errors.Wrap(eum.ErrNoSuchPost, err.Error())
		}
		return nil, errors.Wrap(err, "logic:React")
	}

	c.mu.Lock()
	if c.current != nil && c.current.PostID == postID {
		cp := *c.current
		cp.Likes, cp.Dislikes = res.Likes, res.Dislikes
		cp.IsLiked, cp.IsDisliked = res.IsLiked, res.IsDisliked
		c.current = &cp
	}
	c.mu.Unlock()

	if c.posts.patchPost(postID, func(p *models.PostSummary) {
		p.Likes, p.Dislikes = res.Likes, res.Dislikes
	}) {
		// 缓存的分页里还是旧的数量
		c.posts.Invalidate()
	}
	return res, nil
}

func (c *CommunityStore) GetRecommendations(ctx context.Context, postID int64) ([]*models.PostSummary, error) {
	posts, err := c.api.GetRecommendations(ctx, postID)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("recommendations").Inc()
		return nil, errors.Wrap(err, "logic:GetRecommendations")
	}
	res := make([]*models.PostSummary, 0, len(posts))
	for _, p := range posts {
		if p.PostID != postID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (c *CommunityStore) GetWrittenPosts(ctx context.Context, page, size int) (*models.PostPage, error) {
	res, err := c.api.GetWrittenPosts(ctx, page, size)
	if err != nil {
		metrics.BackendErrors.WithLabelValues("written_posts").Inc()
		return nil, errors.Wrap(err, "logic:GetWrittenPosts")
	}
	return res, nil
}

// TopViewed returns the k most viewed posts this session has seen.
func (c *CommunityStore) TopViewed(k int) []*models.PostSummary {
	return localcache.TopKByViews(c.posts.seenPosts(), k)
}
