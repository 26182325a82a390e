package workers

import (
	"context"
	"eum/dao/localstore"
	"eum/logic"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	wg     sync.WaitGroup
	cancel context.CancelFunc
)

func InitWorkers() {
	var ctx context.Context
	ctx, cancel = context.WithCancel(context.Background())

	flusher, err := NewWebLogFlusher(logic.GetWebLogBuffer(), NewWebLogSink(),
		viper.GetInt("weblog.pool_size"), viper.GetInt("weblog.batch_size"))
	if err != nil {
		panic(err.Error())
	}
	flusher.Run(ctx, &wg, time.Duration(viper.GetInt64("weblog.flush_interval"))*time.Second)

	if p, ok := localstore.GetStore().(Purger); ok {
		retention := time.Duration(viper.GetInt64("localstore.retention_days")) * 24 * time.Hour
		PurgeLocalStore(ctx, &wg, p, retention, time.Hour)
	}
}

// Wait stops the background tasks and blocks until their last round is done.
func Wait() {
	if cancel != nil {
		cancel()
	}
	wg.Wait()
}
