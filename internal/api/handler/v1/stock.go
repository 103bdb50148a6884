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

type StockService interface {
	ApplyMovement(ctx context.Context, productID uint, movementType domain.MovementType, quantity int, notes string, actor domain.User) (domain.StockMovement, int, error)
	ReverseMovement(ctx context.Context, movementID uint, actor domain.User) (domain.StockMovement, int, error)
	UpdateMovement(ctx context.Context, movement domain.StockMovement, actor domain.User) (domain.StockMovement, error)
	DeleteMovement(ctx context.Context, movementID uint) error
	GetMovement(ctx context.Context, movementID uint) (domain.StockMovement, error)
	GetMovements(ctx context.Context) ([]domain.StockMovement, error)
	GetMovementsByProduct(ctx context.Context, productID uint) ([]domain.StockMovement, error)
}

type StockHandler struct {
	svc  StockService
	uSvc UserService
}

func NewStockHandler(svc StockService, uSvc UserService) *StockHandler {
	return &StockHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

func parseMovementID(ctx *gin.Context) (uint, bool) {
	rawID := ctx.Param("movementID")
	movementID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid movement ID %v", rawID)))
		return 0, false
	}

	return uint(movementID), true
}

// renderStockErr maps the stock error kinds shared by several endpoints.
func renderStockErr(ctx *gin.Context, site string, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		response.RenderErr(ctx, response.ErrConflict(stockErr))
	case errors.Is(err, service.ErrConflictingUpdate):
		response.RenderErr(ctx, response.ErrConflict(service.ErrConflictingUpdate))
	case errors.Is(err, service.ErrInvalidMovementType), errors.Is(err, service.ErrInvalidQuantity):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrProductNotFound):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrProductNotFound))
	case errors.Is(err, service.ErrMovementNotFound):
		response.RenderErr(ctx, response.ErrNotFound("stock movement", "ID", ctx.Param("movementID")))
	default:
		err = fmt.Errorf("%v -> %w", site, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

// HandleGetMovements godoc
// @Summary      List stock movements
// @Description  Returns the full stock ledger, newest first. Optionally filtered by product.
// @Tags         stock
// @Produce      json
// @Param        product_id  query     int  false  "Product ID"
// @Success      200         {array}   domain.StockMovement
// @Failure      400         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stock-movements [get]
// @Security     BearerAuth
func (h *StockHandler) HandleGetMovements(ctx *gin.Context) {
	var movements []domain.StockMovement
	var err error

	if raw := ctx.Query("product_id"); raw != "" {
		productID, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid product ID %v", raw)))
			return
		}
		movements, err = h.svc.GetMovementsByProduct(ctx.Request.Context(), uint(productID))
	} else {
		movements, err = h.svc.GetMovements(ctx.Request.Context())
	}

	if err != nil {
		err = fmt.Errorf("v1.HandleGetMovements -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, movements)
}

// HandleGetMovement godoc
// @Summary      Get a stock movement by ID
// @Tags         stock
// @Produce      json
// @Param        movementID  path      int  true  "Movement ID"
// @Success      200         {object}  domain.StockMovement
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stock-movements/{movementID} [get]
// @Security     BearerAuth
func (h *StockHandler) HandleGetMovement(ctx *gin.Context) {
	movementID, ok := parseMovementID(ctx)
	if !ok {
		return
	}

	movement, err := h.svc.GetMovement(ctx.Request.Context(), movementID)
	if err != nil {
		if errors.Is(err, service.ErrMovementNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("stock movement", "ID", movementID))
			return
		}

		err = fmt.Errorf("v1.HandleGetMovement -> h.svc.GetMovement -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, movement)
}

// HandleCreateMovement godoc
// @Summary      Record a stock movement
// @Description  Appends a ledger entry and adjusts the product's stock atomically. An outbound movement larger than the current stock is rejected with 409 and records nothing.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateMovementRequest  true  "request body"
// @Success      201      {object}  response.StockMovementResponse
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /stock-movements [post]
// @Security     BearerAuth
func (h *StockHandler) HandleCreateMovement(ctx *gin.Context) {
	var req request.CreateMovementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	movement, newStock, err := h.svc.ApplyMovement(
		ctx.Request.Context(),
		req.ProductID,
		domain.MovementType(req.MovementType()),
		req.Quantity,
		req.Notes,
		user,
	)
	if err != nil {
		renderStockErr(ctx, "v1.HandleCreateMovement -> h.svc.ApplyMovement", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.StockMovementResponse{
		Movement: movement,
		NewStock: newStock,
	})
}

// HandleUpdateMovement godoc
// @Summary      Correct a stock movement
// @Description  Rewrites a ledger entry. The original effect is undone and the new one applied in a single transaction; a correction that would drive stock negative is rejected with 409.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        movementID  path      int                            true  "Movement ID"
// @Param        request     body      request.UpdateMovementRequest  true  "request body"
// @Success      200         {object}  domain.StockMovement
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stock-movements/{movementID} [put]
// @Security     BearerAuth
func (h *StockHandler) HandleUpdateMovement(ctx *gin.Context) {
	movementID, ok := parseMovementID(ctx)
	if !ok {
		return
	}

	var req request.UpdateMovementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	movement, err := h.svc.UpdateMovement(ctx.Request.Context(), domain.StockMovement{
		ID:        movementID,
		ProductID: req.ProductID,
		Type:      domain.MovementType(req.MovementType()),
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	}, user)
	if err != nil {
		renderStockErr(ctx, "v1.HandleUpdateMovement -> h.svc.UpdateMovement", err)
		return
	}

	ctx.JSON(http.StatusOK, movement)
}

// HandleDeleteMovement godoc
// @Summary      Delete a stock movement
// @Description  Removes the ledger entry and reverses its effect on the product's stock atomically.
// @Tags         stock
// @Produce      json
// @Param        movementID  path      int  true  "Movement ID"
// @Success      204         {string}  string  "No Content"
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stock-movements/{movementID} [delete]
// @Security     BearerAuth
func (h *StockHandler) HandleDeleteMovement(ctx *gin.Context) {
	movementID, ok := parseMovementID(ctx)
	if !ok {
		return
	}

	if err := h.svc.DeleteMovement(ctx.Request.Context(), movementID); err != nil {
		renderStockErr(ctx, "v1.HandleDeleteMovement -> h.svc.DeleteMovement", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleReverseMovement godoc
// @Summary      Reverse a stock movement
// @Description  Records a compensating entry with the opposite direction and the same quantity. The original entry stays in the ledger.
// @Tags         stock
// @Produce      json
// @Param        movementID  path      int  true  "Movement ID"
// @Success      201         {object}  response.StockMovementResponse
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stock-movements/{movementID}/reverse [post]
// @Security     BearerAuth
func (h *StockHandler) HandleReverseMovement(ctx *gin.Context) {
	movementID, ok := parseMovementID(ctx)
	if !ok {
		return
	}

	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	movement, newStock, err := h.svc.ReverseMovement(ctx.Request.Context(), movementID, user)
	if err != nil {
		renderStockErr(ctx, "v1.HandleReverseMovement -> h.svc.ReverseMovement", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.StockMovementResponse{
		Movement: movement,
		NewStock: newStock,
	})
}
