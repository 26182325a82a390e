package controller

import "eum/models"

type ResponsePostList struct {
	*models.PostPage
	State models.StoreState `json:"state"`
}

type ResponsePostDetail struct {
	Post            *models.Post          `json:"post"`
	NeedRefreshMenu bool                  `json:"needRefreshCategories"`
	Recommendations []*models.PostSummary `json:"recommendations,omitempty"`
}

type ResponsePostCreate struct {
	PostID int64 `json:"postId,string"`
}

type ResponseBookmark struct {
	InformationID int64   `json:"informationId"`
	Bookmarked    bool    `json:"isBookmarked"`
	BookmarkedIDs []int64 `json:"bookmarkedIds"`
}

type ResponseWebLog struct {
	LogID int64 `json:"logId,string"`
}
