package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/smallbiznis/restock/internal/product/domain"
	"github.com/smallbiznis/restock/pkg/db/pagination"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/products/%s", resp.ID))
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	includeDeleted, err := parseOptionalBool(c.Query("includeDeleted"))
	if err != nil {
		AbortWithError(c, newValidationError("includeDeleted", "invalid_bool", "invalid includeDeleted"))
		return
	}

	resp, err := s.productSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")), includeDeleted != nil && *includeDeleted)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type listProductsQuery struct {
	Query          string `form:"query"`
	ProductTypeID  string `form:"productTypeId"`
	BrandID        string `form:"brandId"`
	Status         string `form:"status"`
	ImportBatch    string `form:"importBatch"`
	SupplierName   string `form:"supplierName"`
	MinPrice       string `form:"minPrice"`
	MaxPrice       string `form:"maxPrice"`
	LowStock       string `form:"lowStock"`
	IncludeDeleted string `form:"includeDeleted"`
	SortBy         string `form:"sortBy"`
	OrderBy        string `form:"orderBy"`

	pagination.Pagination
}

func (q listProductsQuery) toListRequest() (productdomain.ListRequest, error) {
	minPrice, err := parseOptionalDecimal(q.MinPrice)
	if err != nil {
		return productdomain.ListRequest{}, newValidationError("minPrice", "invalid_decimal", "invalid minPrice")
	}
	maxPrice, err := parseOptionalDecimal(q.MaxPrice)
	if err != nil {
		return productdomain.ListRequest{}, newValidationError("maxPrice", "invalid_decimal", "invalid maxPrice")
	}
	lowStock, err := parseOptionalBool(q.LowStock)
	if err != nil {
		return productdomain.ListRequest{}, newValidationError("lowStock", "invalid_bool", "invalid lowStock")
	}
	includeDeleted, err := parseOptionalBool(q.IncludeDeleted)
	if err != nil {
		return productdomain.ListRequest{}, newValidationError("includeDeleted", "invalid_bool", "invalid includeDeleted")
	}

	return productdomain.ListRequest{
		Query:          strings.TrimSpace(q.Query),
		ProductTypeID:  strings.TrimSpace(q.ProductTypeID),
		BrandID:        strings.TrimSpace(q.BrandID),
		Status:         strings.TrimSpace(q.Status),
		ImportBatch:    strings.TrimSpace(q.ImportBatch),
		SupplierName:   strings.TrimSpace(q.SupplierName),
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		LowStock:       lowStock,
		IncludeDeleted: includeDeleted != nil && *includeDeleted,
		SortBy:         strings.TrimSpace(q.SortBy),
		OrderBy:        strings.TrimSpace(q.OrderBy),
		Pagination:     q.Pagination,
	}, nil
}

func (s *Server) ListProducts(c *gin.Context) {
	var query listProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req, err := query.toListRequest()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Items, "pageInfo": resp.PageInfo})
}

// SearchProducts is a thin alias over List for the search box; only the
// free-text query and pagination are honored.
func (s *Server) SearchProducts(c *gin.Context) {
	var query struct {
		Query string `form:"query"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Query:      strings.TrimSpace(query.Query),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Items, "pageInfo": resp.PageInfo})
}

func (s *Server) ListLowStockProducts(c *gin.Context) {
	resp, err := s.productSvc.LowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProductStock(c *gin.Context) {
	var req productdomain.StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.UpdateStock(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkProductStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.MarkStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkUpdateStock(c *gin.Context) {
	var req productdomain.BulkStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.BulkUpdateStock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkUpdatePrices(c *gin.Context) {
	var req productdomain.BulkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.BulkUpdatePrices(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkUpdateStatus(c *gin.Context) {
	var req productdomain.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.BulkUpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkDeleteProducts(c *gin.Context) {
	var req productdomain.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.BulkDelete(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
