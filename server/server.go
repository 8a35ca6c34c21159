package server

import (
	"bibgraph-backend/server/common"
	"bibgraph-backend/server/handler"
	"fmt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

type Config struct {
	Host      string
	Port      int
	DebugMode bool
}

type Server struct {
	engine *gin.Engine
	config *Config
}

func New(config *Config) *Server {
	if !config.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	eng := gin.New()

	eng.Use(gin.Recovery())
	eng.Use(common.LogRequest)
	eng.Use(common.SetUserInfo(config.DebugMode))
	eng.Use(cors.Default())

	eng.GET("/test/coffee", coffeeHandler)
	eng.GET("/metrics", gin.WrapH(promhttp.Handler()))

	eng.GET("/fileinfo", handler.GetFileInfo)

	// 需要登录的路由
	adminGroup := eng.Group("admin")
	{
		adminGroup.Use(common.RejectNotLogin(config.DebugMode))

		adminGroup.POST("/run", handler.SubmitRun)
		adminGroup.GET("/runs", handler.ListRun)
		adminGroup.GET("/runs/:id", handler.GetRunInfo)
		adminGroup.GET("/listfile", handler.ListFile)
	}

	return &Server{
		engine: eng,
		config: config,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) RunServer() error {
	return s.engine.Run(fmt.Sprintf("%s:%d", s.config.Host, s.config.Port))
}

func coffeeHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusTeapot, common.MakeSuccessResp("I'm a teapot"))
}
