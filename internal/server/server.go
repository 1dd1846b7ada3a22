package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dungeon-server/internal/engine"
	"dungeon-server/internal/version"
	"dungeon-server/pkg/logger"
)

// Server - HTTP/WebSocket обвязка вокруг игровой сессии
type Server struct {
	Session *engine.Session
	Port    string
	router  *gin.Engine
}

func NewServer(session *engine.Session, port string) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		Session: session,
		Port:    port,
		router:  gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.router.GET("/ws", s.handleWS)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/version", s.handleVersion)
}

func (s *Server) Run() error {
	logger.Log.Infof("Server listening on :%s", s.Port)
	return s.router.Run(":" + s.Port)
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.WithError(err).Error("WS upgrade error")
		return
	}

	client := NewClient(s.Session, conn)
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.Info())
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
