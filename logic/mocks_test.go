package logic

import (
	"context"
	"eum/dao/api"
	"eum/dao/localstore"
	"eum/models"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommunityAPI struct {
	mock.Mock
}

func (m *MockCommunityAPI) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockCommunityAPI) CreatePost(ctx context.Context, params *models.ParamCreatePost, files []api.FileUpload) (*models.Post, error) {
	args := m.Called(ctx, params, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockCommunityAPI) UpdatePost(ctx context.Context, postID int64, params *models.ParamUpdatePost, files []api.FileUpload) (*models.Post, error) {
	args := m.Called(ctx, postID, params, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockCommunityAPI) DeletePost(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockCommunityAPI) ReactToPost(ctx context.Context, postID int64, emotion models.Emotion) (*models.EmotionResult, error) {
	args := m.Called(ctx, postID, emotion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmotionResult), args.Error(1)
}

func (m *MockCommunityAPI) GetRecommendations(ctx context.Context, postID int64) ([]*models.PostSummary, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PostSummary), args.Error(1)
}

func (m *MockCommunityAPI) GetWrittenPosts(ctx context.Context, page, size int) (*models.PostPage, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostPage), args.Error(1)
}

type MockInfoAPI struct {
	mock.Mock
}

func (m *MockInfoAPI) GetInformationList(ctx context.Context, category string, page, size int) (*models.InformationPage, error) {
	args := m.Called(ctx, category, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InformationPage), args.Error(1)
}

func (m *MockInfoAPI) GetInformation(ctx context.Context, id int64) (*models.InformationPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InformationPost), args.Error(1)
}

func (m *MockInfoAPI) ToggleBookmark(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newLocal(t *testing.T, namespace string) (*localstore.Namespaced, *localstore.SQLiteStore) {
	t.Helper()
	s, err := localstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return localstore.Bind(s, namespace), s
}
