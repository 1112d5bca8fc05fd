package server

import (
	"net/http"
	"strings"

	productdomain "github.com/coptimize/openinventory/internal/product/domain"
	"github.com/gin-gonic/gin"
)

// actorHeader identifies the acting user in multi-tenant mode. Ignored by
// the single-tenant store.
const actorHeader = "X-Actor-ID"

func actorID(c *gin.Context) *string {
	if v := strings.TrimSpace(c.GetHeader(actorHeader)); v != "" {
		return &v
	}
	return nil
}

func (s *Server) registerProductRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/products", s.listProducts)
	v1.POST("/products", s.createProduct)
	v1.GET("/products/:id", s.getProduct)
	v1.PATCH("/products/:id", s.updateProduct)
	v1.DELETE("/products/:id", s.deleteProduct)
	v1.POST("/products/:id/restore", s.restoreProduct)
	v1.GET("/products/:id/stocks", s.listStocks)
	v1.POST("/products/:id/stocks", s.addStock)
}

func (s *Server) listProducts(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"
	items, err := s.productSvc.List(c.Request.Context(), includeDeleted)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": items})
}

func (s *Server) createProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.ActorID == nil {
		req.ActorID = actorID(c)
	}

	created, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")
	if req.ActorID == nil {
		req.ActorID = actorID(c)
	}

	updated, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) restoreProduct(c *gin.Context) {
	restored, err := s.productSvc.Restore(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, restored)
}

func (s *Server) listStocks(c *gin.Context) {
	items, err := s.productSvc.Stocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stocks": items})
}

func (s *Server) addStock(c *gin.Context) {
	var req productdomain.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ProductID = c.Param("id")
	if req.ActorID == nil {
		req.ActorID = actorID(c)
	}

	stock, err := s.productSvc.AddStock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stock)
}
