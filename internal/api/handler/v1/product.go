package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RestVisor/restvisor-back/internal/api/handler/v1/request"
	"github.com/RestVisor/restvisor-back/internal/api/handler/v1/response"
	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/service"
)

type ProductService interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uint) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

// HandleGetProducts godoc
// @Summary      List all products
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Product
// @Failure      500  {object}  response.Err
// @Router       /products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProducts(ctx *gin.Context) {
	products, err := h.svc.GetProducts(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetProducts -> h.svc.GetProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleGetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        productID  path      int  true  "Product ID"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /products/{productID} [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProduct(ctx *gin.Context) {
	rawID := ctx.Param("productID")
	productID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid product ID %v", rawID)))
		return
	}

	product, err := h.svc.GetProduct(ctx.Request.Context(), uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
			return
		}

		err = fmt.Errorf("v1.HandleGetProduct -> h.svc.GetProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleCreateProduct godoc
// @Summary      Create a new product
// @Description  Registers a menu product. Stock always starts at zero; inventory arrives through stock movements.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateProductRequest  true  "request body"
// @Success      201      {object}  domain.Product
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	var req request.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.CreateProduct(ctx.Request.Context(), domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateProduct -> h.svc.CreateProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleDeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        productID  path      int  true  "Product ID"
// @Success      204        {string}  string  "No Content"
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /products/{productID} [delete]
// @Security     BearerAuth
func (h *ProductHandler) HandleDeleteProduct(ctx *gin.Context) {
	rawID := ctx.Param("productID")
	productID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid product ID %v", rawID)))
		return
	}

	if err := h.svc.DeleteProduct(ctx.Request.Context(), uint(productID)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", productID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteProduct -> h.svc.DeleteProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
