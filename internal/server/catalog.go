package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
)

func (s *Server) ListProductTypeOptions(c *gin.Context) {
	s.obsMetrics.RecordDropdownQuery(c.Request.Context(), "product_types")

	resp, err := s.catalogSvc.ProductTypeOptions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBrandOptions(c *gin.Context) {
	s.obsMetrics.RecordDropdownQuery(c.Request.Context(), "brands")

	resp, err := s.catalogSvc.BrandOptions(c.Request.Context(), c.Query("productTypeId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListModelOptions(c *gin.Context) {
	s.obsMetrics.RecordDropdownQuery(c.Request.Context(), "models")

	resp, err := s.catalogSvc.ModelOptions(c.Request.Context(), c.Query("productTypeId"), c.Query("brandId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListColorOptions(c *gin.Context) {
	s.obsMetrics.RecordDropdownQuery(c.Request.Context(), "colors")

	resp, err := s.catalogSvc.ColorOptions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListConditionOptions(c *gin.Context) {
	s.obsMetrics.RecordDropdownQuery(c.Request.Context(), "conditions")

	resp, err := s.catalogSvc.ConditionOptions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func catalogKind(c *gin.Context) catalogdomain.Kind {
	return catalogdomain.Kind(strings.TrimSpace(c.Param("kind")))
}

func (s *Server) ListCatalogEntries(c *gin.Context) {
	resp, err := s.catalogSvc.List(c.Request.Context(), catalogKind(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCatalogEntry(c *gin.Context) {
	var req catalogdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Kind = catalogKind(c)

	resp, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateCatalogEntry(c *gin.Context) {
	var req catalogdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Kind = catalogKind(c)
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.catalogSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveCatalogEntry(c *gin.Context) {
	if err := s.catalogSvc.Archive(c.Request.Context(), catalogKind(c), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
