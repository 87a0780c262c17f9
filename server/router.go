package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: time.Minute, Limit: 5})
	limitRate := limitSensitiveRoutes(store)

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())
	apirouter.GET("/google/login", s.HandleGoogleLogin())
	apirouter.GET("auth/google/callback", s.HandleGoogleCallback())
	apirouter.POST("/password/forgot", limitRate, s.HandleForgotPassword())
	apirouter.POST("/password/reset/:token", s.ResetPassword())
	apirouter.GET("/reports", s.handleGetRecentReports())
	apirouter.GET("/reports/:reportID", s.handleGetReport())
	apirouter.GET("/leaderboard", s.handleLeaderboard())
	apirouter.GET("/feed/ws", s.HandleFeed())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.PUT("/me", s.handleUpdateProfile())
	authorized.GET("/users/all", s.handleGetAllUsers())
	authorized.POST("/user/report", limitRate, s.handleSubmitReport())
	authorized.GET("/user/tasks", s.handleGetOpenTasks())
	authorized.PUT("/user/tasks/:reportID/status", s.handleClaimTask())
	authorized.POST("/user/tasks/:reportID/verify", s.handleVerifyCollection())
	authorized.GET("/user/rewards/balance", s.handleGetUserRewardBalance())
	authorized.GET("/user/transactions", s.handleGetTransactions())
	authorized.GET("/user/rewards", s.handleGetAvailableRewards())
	authorized.POST("/user/rewards/:rewardID/redeem", s.handleRedeemReward())
	authorized.GET("/user/notifications", s.handleGetUnreadNotifications())
	authorized.PUT("/user/notifications/:notificationID/read", s.handleMarkNotificationRead())
}
