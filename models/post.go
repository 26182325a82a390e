package models

type PostType string

const (
	PostTypeFree  PostType = "자유"
	PostTypeGroup PostType = "모임"
)

// 分类/地区选择 "전체" 时不做过滤
const AllValue = "전체"

const (
	SortLatest = "latest"
	SortViews  = "views"
	SortLikes  = "likes"
)

type Writer struct {
	UserID       int64  `json:"userId"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImagePath,omitempty"`
	Role         string `json:"role,omitempty"`
}

type Attachment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type PostSummary struct {
	PostID    int64    `json:"postId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Writer    Writer   `json:"writer"`
	Views     int64    `json:"views"`
	Likes     int64    `json:"like"`
	Dislikes  int64    `json:"dislike"`
	Comments  int64    `json:"commentCnt"`
	PostType  PostType `json:"postType"`
	Address   string   `json:"address,omitempty"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

type Post struct {
	PostSummary
	Files      []Attachment `json:"files"`
	IsLiked    bool         `json:"isLiked"`
	IsDisliked bool         `json:"isDisliked"`
}

// PostFilter shapes a single listing request. Page is 1-based.
type PostFilter struct {
	Category string   `form:"category" json:"category,omitempty"`
	PostType PostType `form:"postType" json:"postType,omitempty"`
	Location string   `form:"location" json:"location,omitempty"`
	Tag      string   `form:"tag" json:"tag,omitempty"`
	SortBy   string   `form:"sortBy" json:"sortBy,omitempty" binding:"omitempty,oneof=latest views likes"`
	Page     int      `form:"page" json:"page" binding:"omitempty,gt=0"`
	Size     int      `form:"size" json:"size" binding:"omitempty,gt=0,lte=100"`
}

type PostPage struct {
	Posts      []*PostSummary `json:"postList"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	Size       int            `json:"size"`
	Offline    bool           `json:"offline,omitempty"` // 结果来自本地索引
}

type Emotion string

const (
	EmotionLike    Emotion = "LIKE"
	EmotionDislike Emotion = "DISLIKE"
)

// EmotionResult is the backend's answer to a reaction.
type EmotionResult struct {
	Likes      int64 `json:"like"`
	Dislikes   int64 `json:"dislike"`
	IsLiked    bool  `json:"isLiked"`
	IsDisliked bool  `json:"isDisliked"`
}

// PostDoc is what the local full-text index stores.
type PostDoc struct {
	PostID    int64    `json:"post_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      string   `json:"tags"`
	TagList   []string `json:"tag_list"`
	Region    string   `json:"region"`
	PostType  string   `json:"post_type"`
	CreatedAt string   `json:"created_time"`
	Raw       string   `json:"raw"` // 原始 PostSummary JSON，只存储不索引
}
