package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) registerMigrationRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/mode", s.getMode)
	v1.POST("/migration", s.runMigration)
}

func (s *Server) getMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode":              s.mode,
		"auth_mode_enabled": s.prefs.IsAuthModeEnabled(),
	})
}

func (s *Server) runMigration(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 8 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.migrator.Migrate(c.Request.Context(), req.Username, string(hash)); err != nil {
		AbortWithError(c, err)
		return
	}

	// The new store only becomes active on the next start.
	c.JSON(http.StatusOK, gin.H{
		"status":           "completed",
		"restart_required": true,
	})
}
