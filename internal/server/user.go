package server

import (
	"net/http"
	"strings"

	userdomain "github.com/coptimize/openinventory/internal/user/domain"
	"github.com/gin-gonic/gin"
)

// User routes only exist in multi-tenant mode; the single-tenant store has
// no users table.
func (s *Server) registerUserRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/login", s.login)
	v1.GET("/users", s.listUsers)
	v1.POST("/users", s.createUser)
	v1.GET("/users/:id", s.getUser)
	v1.PATCH("/users/:id/role", s.changeUserRole)
	v1.DELETE("/users/:id", s.deleteUser)
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	u, err := s.userSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) createUser(c *gin.Context) {
	var req userdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.ActorID) == "" {
		if actor := actorID(c); actor != nil {
			req.ActorID = *actor
		}
	}

	created, err := s.userSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getUser(c *gin.Context) {
	u, err := s.userSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) changeUserRole(c *gin.Context) {
	var req userdomain.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")
	if strings.TrimSpace(req.ActorID) == "" {
		if actor := actorID(c); actor != nil {
			req.ActorID = *actor
		}
	}

	changed, err := s.userSvc.ChangeRole(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, changed)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.userSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
