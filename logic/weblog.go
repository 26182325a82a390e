package logic

import (
	"eum/internal/metrics"
	"eum/internal/utils"
	"eum/models"
	"sync"
	"time"
)

const defaultWebLogCapacity = 10000

// WebLogBuffer queues analytics events until a worker ships them. When full,
// new events are dropped.
type WebLogBuffer struct {
	mu       sync.Mutex
	logs     []*models.WebLog
	capacity int
}

func NewWebLogBuffer(capacity int) *WebLogBuffer {
	if capacity <= 0 {
		capacity = defaultWebLogCapacity
	}
	return &WebLogBuffer{capacity: capacity}
}

var webLogs = NewWebLogBuffer(defaultWebLogCapacity)

func GetWebLogBuffer() *WebLogBuffer {
	return webLogs
}

func (b *WebLogBuffer) Add(l *models.WebLog) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.logs) >= b.capacity {
		metrics.WebLogs.WithLabelValues("dropped").Inc()
		return false
	}
	b.logs = append(b.logs, l)
	metrics.WebLogs.WithLabelValues("queued").Inc()
	return true
}

// Drain removes and returns up to n of the oldest events.
func (b *WebLogBuffer) Drain(n int) []*models.WebLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > len(b.logs) {
		n = len(b.logs)
	}
	res := append([]*models.WebLog(nil), b.logs[:n]...)
	b.logs = append(b.logs[:0:0], b.logs[n:]...)
	return res
}

func (b *WebLogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.logs)
}

// RecordWebLog stamps an event with an id, the session and the current user.
func (s *Session) RecordWebLog(params *models.ParamWebLog) *models.WebLog {
	l := &models.WebLog{
		LogID:     utils.GenSnowflakeID(),
		SessionID: s.ID,
		UserID:    s.Auth.State().UserID,
		Event:     params.Event,
		Path:      params.Path,
		Tag:       params.Tag,
		Timestamp: time.Now().UnixMilli(),
	}
	webLogs.Add(l)
	return l
}
