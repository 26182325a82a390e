package api

import (
	"eum/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostPageDefaults(t *testing.T) {
	body := `[{"postId": 1}, {"postId": 2, "title": "  ", "writer": null, "tags": null}]`

	page, err := normalizePostPage([]byte(body), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)

	for _, p := range page.Posts {
		assert.Equal(t, DefaultTitle, p.Title)
		assert.Equal(t, DefaultNickname, p.Writer.Nickname)
		assert.Equal(t, DefaultCategory, p.Category)
		assert.Equal(t, models.PostTypeFree, p.PostType)
		assert.NotNil(t, p.Tags)
		assert.Empty(t, p.Tags)
		assert.Zero(t, p.Views)
	}
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestNormalizePostPageShapes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		total      int64
		totalPages int
	}{
		{
			name:       "spring page",
			body:       `{"content":[{"postId":1,"title":"a"}],"totalElements":41,"totalPages":3}`,
			total:      41,
			totalPages: 3,
		},
		{
			name:       "postList with total",
			body:       `{"postList":[{"postId":1,"title":"a"}],"total":45}`,
			total:      45,
			totalPages: 3,
		},
		{
			name:       "wrapped in data",
			body:       `{"data":{"posts":[{"postId":1,"title":"a"}],"totalCount":1}}`,
			total:      1,
			totalPages: 1,
		},
		{
			name:       "wrapped bare array",
			body:       `{"data":[{"postId":1,"title":"a"}]}`,
			total:      1,
			totalPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := normalizePostPage([]byte(tt.body), 1, 20)
			require.NoError(t, err)
			require.Len(t, page.Posts, 1)
			assert.Equal(t, "a", page.Posts[0].Title)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.totalPages, page.TotalPages)
		})
	}
}

func TestNormalizePostPageEmpty(t *testing.T) {
	page, err := normalizePostPage([]byte(`{"totalElements":0}`), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Zero(t, page.TotalPages)

	_, err = normalizePostPage([]byte(`"nope"`), 1, 20)
	assert.Error(t, err)
}

func TestNormalizeAlternativeFields(t *testing.T) {
	body := `{"postList":[{
		"id": 9007199254740993,
		"title": "모임 구해요",
		"user": {"id": 5, "userName": "지수", "profileImage": "p.png"},
		"viewCount": "12", "likeCount": 3, "dislikes": 1, "commentCount": 4,
		"tags": [{"tagName": "운동"}, "여행"],
		"postType": "모임", "region": "서울"
	}]}`

	page, err := normalizePostPage([]byte(body), 1, 20)
	require.NoError(t, err)
	p := page.Posts[0]
	assert.Equal(t, int64(9007199254740993), p.PostID)
	assert.Equal(t, models.Writer{UserID: 5, Nickname: "지수", ProfileImage: "p.png"}, p.Writer)
	assert.Equal(t, int64(12), p.Views)
	assert.Equal(t, int64(3), p.Likes)
	assert.Equal(t, int64(1), p.Dislikes)
	assert.Equal(t, int64(4), p.Comments)
	assert.Equal(t, []string{"운동", "여행"}, p.Tags)
	assert.Equal(t, models.PostTypeGroup, p.PostType)
	assert.Equal(t, "서울", p.Address)
}

func TestNormalizeWriterNameFallback(t *testing.T) {
	body := `[
		{"postId": 1, "writer": {"userId": 3}, "userName": "하늘"},
		{"postId": 2, "writer": {"userId": 4}},
		{"postId": 3, "author": "바다"}
	]`

	page, err := normalizePostPage([]byte(body), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)
	assert.Equal(t, models.Writer{UserID: 3, Nickname: "하늘"}, page.Posts[0].Writer)
	assert.Equal(t, models.Writer{UserID: 4, Nickname: DefaultNickname}, page.Posts[1].Writer)
	assert.Equal(t, "바다", page.Posts[2].Writer.Nickname)
}

func TestNormalizePost(t *testing.T) {
	o, err := decodeObject([]byte(`{"data":{"postId":3,"emotion":"DISLIKE","files":["https://cdn/x/a.png",{"fileId":2,"fileName":"b.pdf","fileUrl":"https://cdn/b.pdf"}]}}`))
	require.NoError(t, err)

	post := normalizePost(o)
	assert.Equal(t, int64(3), post.PostID)
	assert.True(t, post.IsDisliked)
	assert.False(t, post.IsLiked)
	assert.Equal(t, []models.Attachment{
		{Name: "a.png", URL: "https://cdn/x/a.png"},
		{ID: 2, Name: "b.pdf", URL: "https://cdn/b.pdf"},
	}, post.Files)
}

func TestNormalizeInformation(t *testing.T) {
	page, err := normalizeInformationPage([]byte(`{"informationList":[{"informationId":7,"content":"{}","isBookmarked":true},{"id":8,"writer":{"nickname":"관리자"}}],"totalPages":1}`), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.List, 2)
	assert.Equal(t, int64(7), page.List[0].InformationID)
	assert.True(t, page.List[0].Bookmarked)
	assert.Equal(t, DefaultNickname, page.List[0].Author)
	assert.Equal(t, "관리자", page.List[1].Author)
	assert.Equal(t, DefaultTitle, page.List[1].Title)
}
