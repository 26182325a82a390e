package models

/*
	请求参数
*/

/* Post */
type ParamCreatePost struct {
	Title    string   `json:"title" binding:"required,min=1,max=200"`
	Content  string   `json:"content" binding:"required,max=20000"`
	Category string   `json:"category" binding:"required"`
	PostType PostType `json:"postType" binding:"required,oneof=자유 모임"`
	Tags     []string `json:"tags" binding:"max=10"`
	Address  string   `json:"address" binding:"required_if=PostType 모임"`
	Language string   `json:"language"`
}

type ParamUpdatePost struct {
	Title    *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Content  *string  `json:"content" binding:"omitempty,max=20000"`
	Category *string  `json:"category"`
	Tags     []string `json:"tags" binding:"max=10"`
	Address  *string  `json:"address"`
}

type ParamEmotion struct {
	Emotion Emotion `json:"emotion" binding:"required,oneof=LIKE DISLIKE"`
}

type ParamSearch struct {
	PostFilter
	Keyword    string `form:"keyword"`
	SearchType string `form:"searchType" binding:"omitempty,oneof=제목 내용 제목_내용 작성자"`
}

type ParamWritten struct {
	Page int `form:"page" binding:"omitempty,gt=0"`
	Size int `form:"size" binding:"omitempty,gt=0,lte=100"`
}

/* Information */
type ParamInfoList struct {
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,gt=0"`
	Size     int    `form:"size" binding:"omitempty,gt=0,lte=100"`
}

/* Session */
type ParamSeason struct {
	Season Season `json:"season" binding:"required,oneof=spring hanji professional"`
}

type ParamWebLog struct {
	Event string `json:"event" binding:"required,max=64"`
	Path  string `json:"path" binding:"max=512"`
	Tag   string `json:"tag" binding:"max=64"`
}

type ParamLogin struct {
	Token string `json:"token" binding:"required"`
}
