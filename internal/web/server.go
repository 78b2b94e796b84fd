// Package web exposes the HTTP API: auth, task CRUD, profile, the assistant
// endpoint and the change-event stream.
package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"daylist/internal/auth"
	"daylist/internal/model"
	"daylist/internal/realtime"
	"daylist/internal/service"
)

// Replier is the assistant surface the server needs.
type Replier interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// Server wires services into gin routes.
type Server struct {
	router    *gin.Engine
	auth      *auth.Service
	tasks     *service.TaskService
	profiles  *service.ProfileService
	assistant Replier
	hub       *realtime.Hub
}

func NewServer(authSvc *auth.Service, tasks *service.TaskService, profiles *service.ProfileService, assistant Replier, hub *realtime.Hub) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.HandleMethodNotAllowed = true

	s := &Server{
		router:    router,
		auth:      authSvc,
		tasks:     tasks,
		profiles:  profiles,
		assistant: assistant,
		hub:       hub,
	}

	api := router.Group("/api")
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)
	// Deliberately outside the session group: signing out an already-dead
	// session must succeed, so the handler takes the raw token as-is.
	api.POST("/auth/logout", s.handleLogout)

	authed := api.Group("", s.requireSession)
	{
		authed.GET("/tasks", s.handleListTasks)
		authed.POST("/tasks", s.handleCreateTask)
		authed.PATCH("/tasks/:id", s.handleUpdateTask)
		authed.DELETE("/tasks/:id", s.handleDeleteTask)

		authed.GET("/profile", s.handleGetProfile)
		authed.PUT("/profile", s.handlePutProfile)

		authed.POST("/ai", s.handleAssistant)
		authed.GET("/events", s.handleEvents)
	}

	return s
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the web server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

const ctxUserKey = "user"

// requireSession resolves the bearer token to a user. The events stream may
// pass the token as a query parameter since EventSource cannot set headers.
func (s *Server) requireSession(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	user, err := s.auth.UserFromToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
		return
	}

	c.Set(ctxUserKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(ctxUserKey).(*model.User)
}
