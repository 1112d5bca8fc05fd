package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/coptimize/openinventory/internal/analysis"
	"github.com/gin-gonic/gin"
)

func (s *Server) registerDiscoveryRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/products/:id/analyze", s.analyzeImages)
	v1.POST("/products/:id/analyze-text", s.analyzeText)
	v1.GET("/discovery/tasks", s.listDiscoveryTasks)
	v1.GET("/discovery/tasks/:taskId", s.getDiscoveryTask)
}

func (s *Server) analyzeImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	images := make([]analysis.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		images = append(images, analysis.Image{Name: fh.Filename, Data: data})
	}

	var stockID *string
	if v := strings.TrimSpace(c.PostForm("stock_id")); v != "" {
		stockID = &v
	}

	task, err := s.discoverySvc.StartFromImages(c.Request.Context(), c.Param("id"), stockID, images)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, task)
}

func (s *Server) analyzeText(c *gin.Context) {
	var req struct {
		Text    string  `json:"text"`
		StockID *string `json:"stock_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	task, err := s.discoverySvc.StartFromText(c.Request.Context(), c.Param("id"), req.StockID, req.Text)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, task)
}

func (s *Server) listDiscoveryTasks(c *gin.Context) {
	tasks, err := s.discoverySvc.Active(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) getDiscoveryTask(c *gin.Context) {
	task, err := s.discoverySvc.Task(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if task == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, task)
}
