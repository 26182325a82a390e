package api

import (
	"context"
	"eum/models"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const (
	pathPost           = "/community/post"
	pathRecommendation = "/community/post/recommendation"
	pathSearch         = "/community/post/search"
	pathEmotion        = "/community/post/emotion"
	pathWritten        = "/community/post/written"

	DefaultPageSize = 20
)

var sortParams = map[string]string{
	models.SortLatest: "createdAt,desc",
	models.SortViews:  "views,desc",
	models.SortLikes:  "like,desc",
}

// FilterQuery maps a UI filter onto backend query parameters. Pages are
// 1-based in the UI and 0-based on the backend.
func FilterQuery(f models.PostFilter) url.Values {
	q := url.Values{}
	page, size := f.Page, f.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	q.Set("page", strconv.Itoa(page-1))
	q.Set("size", strconv.Itoa(size))

	if f.Category != "" && f.Category != models.AllValue {
		q.Set("category", f.Category)
	}
	if f.PostType != "" {
		q.Set("postType", string(f.PostType))
	}
	if f.Location != "" && f.Location != models.AllValue {
		q.Set("region", f.Location)
	}
	if f.Tag != "" {
		q.Set("tags", f.Tag)
	}
	sort, ok := sortParams[f.SortBy]
	if !ok {
		sort = sortParams[models.SortLatest]
	}
	q.Set("sort", sort)
	return q
}

func pageOf(f models.PostFilter) (int, int) {
	page, size := f.Page, f.Size
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return page, size
}

func (c *Client) GetPosts(ctx context.Context, f models.PostFilter) (*models.PostPage, error) {
	data, err := c.get(ctx, pathPost, FilterQuery(f))
	if err != nil {
		return nil, errors.Wrap(err, "api:GetPosts: get")
	}
	page, size := pageOf(f)
	res, err := normalizePostPage(data, page, size)
	return res, errors.Wrap(err, "api:GetPosts: normalizePostPage")
}

func (c *Client) SearchPosts(ctx context.Context, keyword, searchType string, f models.PostFilter) (*models.PostPage, error) {
	q := FilterQuery(f)
	q.Set("keyword", keyword)
	if searchType != "" {
		q.Set("searchBy", searchType)
	}
	data, err := c.get(ctx, pathSearch, q)
	if err != nil {
		return nil, errors.Wrap(err, "api:SearchPosts: get")
	}
	page, size := pageOf(f)
	res, err := normalizePostPage(data, page, size)
	return res, errors.Wrap(err, "api:SearchPosts: normalizePostPage")
}

func (c *Client) GetRecommendations(ctx context.Context, postID int64) ([]*models.PostSummary, error) {
	q := url.Values{}
	q.Set("postId", strconv.FormatInt(postID, 10))
	data, err := c.get(ctx, pathRecommendation, q)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetRecommendations: get")
	}
	res, err := normalizePostPage(data, 1, 0)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetRecommendations: normalizePostPage")
	}
	return res.Posts, nil
}

func (c *Client) GetWrittenPosts(ctx context.Context, page, size int) (*models.PostPage, error) {
	q := FilterQuery(models.PostFilter{Page: page, Size: size})
	data, err := c.get(ctx, pathWritten, q)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetWrittenPosts: get")
	}
	page, size = pageOf(models.PostFilter{Page: page, Size: size})
	res, err := normalizePostPage(data, page, size)
	return res, errors.Wrap(err, "api:GetWrittenPosts: normalizePostPage")
}

func (c *Client) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	data, err := c.get(ctx, idPath(pathPost, postID), nil)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetPost: get")
	}
	o, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, "api:GetPost: decodeObject")
	}
	if inner, ok := o.obj("post"); ok { // 详情接口有时把帖子放在 post 字段下
		o = inner
	}
	return normalizePost(o), nil
}

func (c *Client) CreatePost(ctx context.Context, params *models.ParamCreatePost, files []FileUpload) (*models.Post, error) {
	data, err := c.sendForm(ctx, http.MethodPost, pathPost, params, files)
	if err != nil {
		return nil, errors.Wrap(err, "api:CreatePost: sendForm")
	}
	o, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, "api:CreatePost: decodeObject")
	}
	return normalizePost(o), nil
}

func (c *Client) UpdatePost(ctx context.Context, postID int64, params *models.ParamUpdatePost, files []FileUpload) (*models.Post, error) {
	data, err := c.sendForm(ctx, http.MethodPatch, idPath(pathPost, postID), params, files)
	if err != nil {
		return nil, errors.Wrap(err, "api:UpdatePost: sendForm")
	}
	o, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, "api:UpdatePost: decodeObject")
	}
	post := normalizePost(o)
	if post.PostID == 0 {
		post.PostID = postID
	}
	return post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	_, err := c.do(ctx, http.MethodDelete, idPath(pathPost, postID), nil, nil, "")
	return errors.Wrap(err, "api:DeletePost: do")
}

func (c *Client) ReactToPost(ctx context.Context, postID int64, emotion models.Emotion) (*models.EmotionResult, error) {
	data, err := c.sendJSON(ctx, http.MethodPost, idPath(pathEmotion, postID), &models.ParamEmotion{Emotion: emotion})
	if err != nil {
		return nil, errors.Wrap(err, "api:ReactToPost: sendJSON")
	}
	o, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, "api:ReactToPost: decodeObject")
	}
	return &models.EmotionResult{
		Likes:      o.num("like", "likeCount", "likes"),
		Dislikes:   o.num("dislike", "dislikeCount", "dislikes"),
		IsLiked:    o.flag("isLiked", "liked"),
		IsDisliked: o.flag("isDisliked", "disliked"),
	}, nil
}
