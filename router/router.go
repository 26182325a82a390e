package router

import (
	"eum/controller"
	"eum/internal/metrics"
	"eum/logger"
	"eum/logic"
	"eum/middleware"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

var router *gin.Engine

func Init() {
	if !viper.GetBool("server.develop_mode") {
		gin.SetMode(gin.ReleaseMode)
	}
	router = NewRouter(logic.GetSessionManager(), viper.GetString("CORF.frontend_path"),
		viper.GetFloat64("ratelimit.rate"), viper.GetInt64("ratelimit.capacity"))
}

func NewRouter(m *logic.SessionManager, frontendPath string, rate float64, capacity int64) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery(true), middleware.RateLimit(rate, capacity), middleware.CORF(frontendPath)) // 全局限流

	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Session(m))

	/* Post */
	postGrp := v1.Group("/posts")
	postGrp.GET("", controller.PostListHandler)
	postGrp.GET("/state", controller.PostStateHandler)
	postGrp.GET("/search", controller.PostSearchHandler)
	postGrp.DELETE("/search", controller.PostClearSearchHandler)
	postGrp.GET("/hot", controller.PostHotHandler)
	postGrp.GET("/:id", controller.PostDetailHandler)
	postGrp.GET("/:id/recommendations", controller.PostRecommendationHandler)

	authPostGrp := v1.Group("/posts")
	authPostGrp.Use(middleware.RequireAuth())
	authPostGrp.GET("/written", controller.WrittenPostsHandler)
	authPostGrp.POST("", controller.CreatePostHandler)
	authPostGrp.PATCH("/:id", controller.UpdatePostHandler)
	authPostGrp.DELETE("/:id", controller.DeletePostHandler)
	authPostGrp.POST("/:id/emotion", controller.PostEmotionHandler)

	/* Information */
	infoGrp := v1.Group("/info")
	infoGrp.GET("", controller.InfoListHandler)
	infoGrp.GET("/bookmarks", controller.BookmarkListHandler)
	infoGrp.GET("/:id", controller.InfoDetailHandler)
	infoGrp.POST("/:id/bookmark", middleware.RequireAuth(), controller.BookmarkToggleHandler)

	/* Session */
	sessGrp := v1.Group("/session")
	sessGrp.GET("", controller.SessionHandler)
	sessGrp.PUT("/season", controller.SeasonHandler)
	sessGrp.PUT("/auth", controller.LoginHandler)
	sessGrp.DELETE("/auth", controller.LogoutHandler)
	sessGrp.GET("/search/:scope", controller.SearchStateHandler)
	sessGrp.PUT("/search/:scope", controller.SaveSearchStateHandler)

	/* WebLog */
	v1.POST("/logs", controller.WebLogHandler)

	return r
}

func GetServer() *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", viper.GetString("server.ip"), viper.GetInt("server.port")),
		Handler: router,
	}
}
