package logic

import (
	"context"
	"eum/dao/api"
	eum "eum/errors"
	"eum/models"
	"testing"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCommunity(t *testing.T) (*CommunityStore, *MockCommunityAPI, *fakePostAPI) {
	t.Helper()
	local, _ := newLocal(t, "s1")
	fake := newFakePostAPI()
	posts := NewPostStore(fake, nil, local, testPostCfg(gcache.NewFakeClock()))
	mockAPI := new(MockCommunityAPI)
	return NewCommunityStore(mockAPI, posts, local, time.Second), mockAPI, fake
}

func TestCreatePostInvalidatesListing(t *testing.T) {
	ctx := context.Background()
	c, mockAPI, fake := newTestCommunity(t)

	_, err := c.posts.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)

	params := &models.ParamCreatePost{Title: "t", Content: "c"}
	mockAPI.On("CreatePost", mock.Anything, params, []api.FileUpload(nil)).
		Return(&models.Post{PostSummary: models.PostSummary{PostID: 10}}, nil)

	post, err := c.CreatePost(ctx, params, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), post.PostID)
	assert.Equal(t, models.PostTypeFree, params.PostType)
	assert.Equal(t, api.DefaultCategory, params.Category)

	_, err = c.posts.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, fake.listCalls.Load())

	refresh, err := c.ConsumeNeedRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, refresh)
	refresh, err = c.ConsumeNeedRefresh(ctx)
	require.NoError(t, err)
	assert.False(t, refresh)
}

func TestReactReconcilesCounts(t *testing.T) {
	ctx := context.Background()
	c, mockAPI, fake := newTestCommunity(t)
	fake.setPosts("", &models.PostSummary{PostID: 1, Likes: 3}, &models.PostSummary{PostID: 2, Likes: 1})

	_, err := c.posts.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)

	mockAPI.On("GetPost", mock.Anything, int64(1)).
		Return(&models.Post{PostSummary: models.PostSummary{PostID: 1, Likes: 3}}, nil)
	_, err = c.GetPost(ctx, 1)
	require.NoError(t, err)

	mockAPI.On("ReactToPost", mock.Anything, int64(1), models.EmotionLike).
		Return(&models.EmotionResult{Likes: 4, IsLiked: true}, nil)
	res, err := c.React(ctx, 1, models.EmotionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Likes)

	cur := c.Current()
	require.NotNil(t, cur)
	assert.Equal(t, int64(4), cur.Likes)
	assert.True(t, cur.IsLiked)

	st := c.posts.State()
	assert.Equal(t, int64(4), st.Posts[0].Likes)
	assert.Equal(t, int64(1), st.Posts[1].Likes)
}

func TestDeletePostRemovesFromListing(t *testing.T) {
	ctx := context.Background()
	c, mockAPI, fake := newTestCommunity(t)
	fake.setPosts("", &models.PostSummary{PostID: 1}, &models.PostSummary{PostID: 2})

	_, err := c.posts.FetchPosts(ctx, models.PostFilter{Page: 1}, FetchOptions{})
	require.NoError(t, err)

	mockAPI.On("DeletePost", mock.Anything, int64(1)).Return(nil)
	require.NoError(t, c.DeletePost(ctx, 1))

	st := c.posts.State()
	require.Len(t, st.Posts, 1)
	assert.Equal(t, int64(2), st.Posts[0].PostID)
	assert.Equal(t, int64(1), st.Total)
}

func TestGetPostNotFound(t *testing.T) {
	c, mockAPI, _ := newTestCommunity(t)
	mockAPI.On("GetPost", mock.Anything, int64(9)).Return(nil, errors.Wrap(eum.ErrNotFound, "status 404"))

	_, err := c.GetPost(context.Background(), 9)
	assert.True(t, errors.Is(err, eum.ErrNoSuchPost))
	assert.Nil(t, c.Current())
}

func TestGetRecommendationsSkipsSelf(t *testing.T) {
	c, mockAPI, _ := newTestCommunity(t)
	mockAPI.On("GetRecommendations", mock.Anything, int64(1)).
		Return([]*models.PostSummary{{PostID: 1}, {PostID: 7}}, nil)

	list, err := c.GetRecommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].PostID)
}

func TestTopViewedUsesCachedPages(t *testing.T) {
	ctx := context.Background()
	c, _, fake := newTestCommunity(t)
	fake.setPosts("A", &models.PostSummary{PostID: 1, Views: 5}, &models.PostSummary{PostID: 2, Views: 50})

	_, err := c.posts.FetchPosts(ctx, models.PostFilter{Category: "A", Page: 1}, FetchOptions{})
	require.NoError(t, err)
	_, err = c.posts.FetchPosts(ctx, models.PostFilter{Category: "A", Page: 2}, FetchOptions{})
	require.NoError(t, err)

	top := c.TopViewed(1)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].PostID)
}
