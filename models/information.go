package models

type InformationPost struct {
	InformationID int64  `json:"informationId"`
	Title         string `json:"title"`
	Content       string `json:"content"`   // 原始富文本（JSON）
	PlainText     string `json:"plainText"` // 从 Content 提取的纯文本
	Category      string `json:"category"`
	Author        string `json:"userName"`
	Views         int64  `json:"views"`
	Bookmarked    bool   `json:"isBookmarked"`
	CreatedAt     string `json:"createdAt"`
}

type InformationPage struct {
	List       []*InformationPost `json:"informationList"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"totalPages"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
}
