package models

type WebLog struct {
	LogID     int64  `json:"logId,string"`
	SessionID string `json:"sessionId"`
	UserID    int64  `json:"userId,string,omitempty"`
	Event     string `json:"event"`
	Path      string `json:"path,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
