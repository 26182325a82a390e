package workers

import (
	"context"
	"eum/dao/api"
	"eum/dao/kafka"
	"eum/internal/metrics"
	"eum/logger"
	"eum/logic"
	"eum/models"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type WebLogSink interface {
	Send(ctx context.Context, logs []*models.WebLog) error
}

type SinkFunc func(ctx context.Context, logs []*models.WebLog) error

func (f SinkFunc) Send(ctx context.Context, logs []*models.WebLog) error {
	return f(ctx, logs)
}

// NewWebLogSink picks the backend /logs endpoint or Kafka by weblog.sink.
func NewWebLogSink() WebLogSink {
	if viper.GetString("weblog.sink") == "kafka" {
		kafka.InitKafka()
		return kafka.WebLogSink{}
	}
	return SinkFunc(api.GetClient().SendLogs)
}

type WebLogFlusher struct {
	buf   *logic.WebLogBuffer
	sink  WebLogSink
	pool  *ants.Pool
	batch int
}

func NewWebLogFlusher(buf *logic.WebLogBuffer, sink WebLogSink, poolSize, batch int) (*WebLogFlusher, error) {
	if poolSize <= 0 {
		poolSize = 1
	}
	if batch <= 0 {
		batch = 100
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, errors.Wrap(err, "workers:NewWebLogFlusher: NewPool")
	}
	return &WebLogFlusher{buf: buf, sink: sink, pool: pool, batch: batch}, nil
}

// Flush ships everything buffered so far and returns how many events were sent.
// Failed batches are dropped; analytics are best effort.
func (f *WebLogFlusher) Flush(ctx context.Context) int {
	var (
		mu   sync.Mutex
		sent int
		bwg  sync.WaitGroup
	)
	for f.buf.Len() > 0 {
		logs := f.buf.Drain(f.batch)
		bwg.Add(1)
		err := f.pool.Submit(func() {
			defer bwg.Done()
			if err := f.sink.Send(ctx, logs); err != nil {
				metrics.WebLogs.WithLabelValues("dropped").Add(float64(len(logs)))
				logger.Warnf("workers:Flush: send %d weblogs: %v", len(logs), err)
				return
			}
			metrics.WebLogs.WithLabelValues("sent").Add(float64(len(logs)))
			mu.Lock()
			sent += len(logs)
			mu.Unlock()
		})
		if err != nil {
			bwg.Done()
			metrics.WebLogs.WithLabelValues("dropped").Add(float64(len(logs)))
			logger.Warnf("workers:Flush: Submit: %v", err)
		}
	}
	bwg.Wait()
	return sent
}

// Run flushes every interval until ctx is done, then flushes one last time.
func (f *WebLogFlusher) Run(ctx context.Context, wg *sync.WaitGroup, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer f.pool.Release()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.Flush(ctx)
			case <-ctx.Done():
				// 退出前把剩下的发出去
				finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				f.Flush(finalCtx)
				cancel()
				return
			}
		}
	}()
}
