package main

import (
	"context"
	"eum/dao/api"
	"eum/dao/bleve"
	"eum/dao/kafka"
	"eum/dao/localcache"
	"eum/dao/localstore"
	"eum/internal/utils"
	"eum/logger"
	"eum/logic"
	"eum/router"
	"eum/settings"
	"eum/workers"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
)

func init() {
	path := flag.String("c", "./config/config.json", "config path")
	flag.Parse()

	settings.InitSettings(*path)

	logger.InitLogger()

	utils.InitSnowflake()
	utils.InitTrans()

	api.InitAPI()
	logger.Infof("Using EUM backend at %s", viper.GetString("api.base_url"))

	localstore.InitLocalStore()
	logger.Infof("Initializing local storage (%s) successfully", viper.GetString("localstore.driver"))

	bleve.InitBleve()
	logger.Infof("Initializing bleve successfully")

	localcache.InitLocalCache()
	logger.Infof("Initializing Localcache successfully")

	logic.InitSessionManager(localcache.GetSessionCache(), logic.SessionDeps{
		Client:  api.GetClient(),
		Index:   bleve.GetPostIndex(),
		Store:   localstore.GetStore(),
		PostCfg: logic.NewPostStoreConfig(),
	})

	router.Init()
	logger.Infof("Initializing router successfully")

	workers.InitWorkers() // 后台任务
}

func main() {
	srv := router.GetServer()

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint // 阻塞，直到 SIGINT 信号产生

		// Waits for clients that are still requesting, but will force exit after the specified time has elapsed.
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(viper.GetInt64("server.shutdown_waitting_time"))*time.Second)
		defer cancel()
		logger.Infof("Shutting down HTTP Server(wait for all connections to be closed)...")

		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			logger.Errorf("EUM gateway shutdown: %v", err)
		}
		logger.Infof("Http server closed successfully")
		close(idleConnsClosed)
	}()

	logger.Infof("EUM gateway listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		// Error starting or closing listener:
		logger.Errorf("HTTP server ListenAndServe: %v", err)
	}

	<-idleConnsClosed // 直到 close 后，主线程才会退出
	logger.Infof("Waitting for all background tasks to complete...")
	workers.Wait() // 等待所有后台任务结束才退出

	if err := kafka.Close(); err != nil {
		logger.Warnf("close kafka writer: %v", err)
	}
	if err := localstore.GetStore().Close(); err != nil {
		logger.Warnf("close local storage: %v", err)
	}
	if err := bleve.GetPostIndex().Close(); err != nil {
		logger.Warnf("close bleve index: %v", err)
	}
	logger.Sync()
	logger.Infof("Done.\n\nEUM gateway closed successfully")
}
