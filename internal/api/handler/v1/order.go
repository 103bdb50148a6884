package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RestVisor/restvisor-back/internal/api/handler/v1/request"
	"github.com/RestVisor/restvisor-back/internal/api/handler/v1/response"
	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, tableNumber int, details string) (domain.Order, error)
	GetOrder(ctx context.Context, id uint) (domain.Order, error)
	GetOrders(ctx context.Context, filter service.OrderFilter) ([]domain.Order, error)
	GetActiveOrders(ctx context.Context) ([]domain.Order, error)
	GetOrdersByTable(ctx context.Context, tableNumber int) ([]domain.Order, error)
	GetTableHistoryToday(ctx context.Context, tableNumber int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (domain.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	AddLine(ctx context.Context, orderID, productID uint, quantity int, actor domain.User) (domain.OrderLine, error)
	GetLines(ctx context.Context, orderID uint) ([]domain.OrderLine, error)
	ConsolidateTable(ctx context.Context, tableNumber int) (domain.ConsolidatedOrder, error)
	SettleTable(ctx context.Context, tableNumber int) ([]domain.Order, domain.Table, error)
}

// KitchenPublisher pushes order events to the live kitchen feed.
type KitchenPublisher interface {
	Publish(event domain.KitchenEvent)
}

type OrderHandler struct {
	svc  OrderService
	uSvc UserService
	feed KitchenPublisher
}

func NewOrderHandler(svc OrderService, uSvc UserService, feed KitchenPublisher) *OrderHandler {
	return &OrderHandler{
		svc:  svc,
		uSvc: uSvc,
		feed: feed,
	}
}

func parseOrderID(ctx *gin.Context) (uint, bool) {
	rawID := ctx.Param("orderID")
	orderID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid order ID %v", rawID)))
		return 0, false
	}

	return uint(orderID), true
}

func parseTableNumber(ctx *gin.Context) (int, bool) {
	rawNumber := ctx.Param("tableNumber")
	number, err := strconv.Atoi(rawNumber)
	if err != nil || number < 1 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid table number %v", rawNumber)))
		return 0, false
	}

	return number, true
}

// HandleGetOrders godoc
// @Summary      List orders
// @Description  Lists orders, optionally filtered by status and table number.
// @Tags         orders
// @Produce      json
// @Param        status        query     string  false  "Order status"
// @Param        table_number  query     int     false  "Table number"
// @Param        from          query     string  false  "Created from (RFC 3339)"
// @Param        to            query     string  false  "Created until (RFC 3339)"
// @Success      200           {array}   domain.Order
// @Failure      400           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /orders [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetOrders(ctx *gin.Context) {
	var filter service.OrderFilter
	filter.Status = ctx.Query("status")
	if raw := ctx.Query("table_number"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid table number %v", raw)))
			return
		}
		filter.TableNumber = number
	}
	if raw := ctx.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid from date %v", raw)))
			return
		}
		filter.From = from
	}
	if raw := ctx.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid to date %v", raw)))
			return
		}
		filter.To = to
	}

	orders, err := h.svc.GetOrders(ctx.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleGetOrders -> h.svc.GetOrders -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleGetActiveOrders godoc
// @Summary      List active orders
// @Description  Returns every active, undelivered order for the kitchen dashboard, oldest first.
// @Tags         orders
// @Produce      json
// @Success      200  {array}   domain.Order
// @Failure      500  {object}  response.Err
// @Router       /orders/active [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetActiveOrders(ctx *gin.Context) {
	orders, err := h.svc.GetActiveOrders(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetActiveOrders -> h.svc.GetActiveOrders -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleGetOrder godoc
// @Summary      Get an order by ID
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "Order ID"
// @Success      200      {object}  domain.Order
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID} [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetOrder(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
			return
		}

		err = fmt.Errorf("v1.HandleGetOrder -> h.svc.GetOrder -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleCreateOrder godoc
// @Summary      Create a new order
// @Description  Opens a new pending order row for a table. A table ordering several rounds gets one row per round.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateOrderRequest  true  "request body"
// @Success      201      {object}  domain.Order
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleCreateOrder(ctx *gin.Context) {
	var req request.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.CreateOrder(ctx.Request.Context(), req.TableNumber, req.Details)
	if err != nil {
		if errors.Is(err, service.ErrTableNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("table", "number", req.TableNumber))
			return
		}

		err = fmt.Errorf("v1.HandleCreateOrder -> h.svc.CreateOrder -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.feed.Publish(domain.KitchenEvent{
		Type:        "order_created",
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Status:      order.Status,
	})

	ctx.JSON(http.StatusCreated, order)
}

// HandleUpdateOrderStatus godoc
// @Summary      Update an order's status
// @Description  Moves the order to any recognized status. Legacy Spanish status names are accepted and normalized.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID  path      int                               true  "Order ID"
// @Param        request  body      request.UpdateOrderStatusRequest  true  "request body"
// @Success      200      {object}  domain.Order
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID}/status [patch]
// @Security     BearerAuth
func (h *OrderHandler) HandleUpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req request.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.UpdateStatus(ctx.Request.Context(), orderID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateOrderStatus -> h.svc.UpdateStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.feed.Publish(domain.KitchenEvent{
		Type:        "status_changed",
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Status:      order.Status,
	})

	ctx.JSON(http.StatusOK, order)
}

// HandleDeleteOrder godoc
// @Summary      Delete an order
// @Description  Removes an order and its lines. Stock already debited by the lines is not returned; use a stock movement to correct inventory.
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "Order ID"
// @Success      204      {string}  string  "No Content"
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID} [delete]
// @Security     BearerAuth
func (h *OrderHandler) HandleDeleteOrder(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	if err := h.svc.DeleteOrder(ctx.Request.Context(), orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteOrder -> h.svc.DeleteOrder -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAddOrderLine godoc
// @Summary      Add a line to an order
// @Description  Attaches a product to the order. The line insert, the stock debit and the ledger entry commit as one transaction; an oversell is rejected with 409 and leaves nothing behind.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID  path      int                          true  "Order ID"
// @Param        request  body      request.AddOrderLineRequest  true  "request body"
// @Success      201      {object}  domain.OrderLine
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID}/lines [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleAddOrderLine(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req request.AddOrderLineRequest
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

	line, err := h.svc.AddLine(ctx.Request.Context(), orderID, req.ProductID, req.Quantity, user)
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			response.RenderErr(ctx, response.ErrConflict(stockErr))
		case errors.Is(err, service.ErrInvalidQuantity):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrOrderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "ID", req.ProductID))
		default:
			err = fmt.Errorf("v1.HandleAddOrderLine -> h.svc.AddLine -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, line)
}

// HandleGetOrderLines godoc
// @Summary      List an order's lines
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "Order ID"
// @Success      200      {array}   domain.OrderLine
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID}/lines [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetOrderLines(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	lines, err := h.svc.GetLines(ctx.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
			return
		}

		err = fmt.Errorf("v1.HandleGetOrderLines -> h.svc.GetLines -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, lines)
}

// HandleGetTableOrders godoc
// @Summary      List a table's orders
// @Tags         tables,orders
// @Produce      json
// @Param        tableNumber  path      int  true  "Table number"
// @Success      200          {array}   domain.Order
// @Failure      400          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /tables/number/{tableNumber}/orders [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetTableOrders(ctx *gin.Context) {
	number, ok := parseTableNumber(ctx)
	if !ok {
		return
	}

	orders, err := h.svc.GetOrdersByTable(ctx.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("orders", "table number", number))
			return
		}

		err = fmt.Errorf("v1.HandleGetTableOrders -> h.svc.GetOrdersByTable -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleGetConsolidatedOrder godoc
// @Summary      Get a table's consolidated order
// @Description  Folds every active order row for the table into one logical order. Lines for the same product are merged with quantities summed. Read-only.
// @Tags         tables,orders
// @Produce      json
// @Param        tableNumber  path      int  true  "Table number"
// @Success      200          {object}  domain.ConsolidatedOrder
// @Failure      400          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /tables/number/{tableNumber}/order [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetConsolidatedOrder(ctx *gin.Context) {
	number, ok := parseTableNumber(ctx)
	if !ok {
		return
	}

	consolidated, err := h.svc.ConsolidateTable(ctx.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveOrders) {
			response.RenderErr(ctx, response.ErrNotFound("active orders", "table number", number))
			return
		}

		err = fmt.Errorf("v1.HandleGetConsolidatedOrder -> h.svc.ConsolidateTable -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, consolidated)
}

// HandleGetTableHistory godoc
// @Summary      Get a table's orders for today
// @Description  Returns the table's orders placed today, newest first. An empty history is a 200 with an empty list.
// @Tags         tables,orders
// @Produce      json
// @Param        tableNumber  path      int  true  "Table number"
// @Success      200          {array}   domain.Order
// @Failure      400          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /tables/number/{tableNumber}/history [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetTableHistory(ctx *gin.Context) {
	number, ok := parseTableNumber(ctx)
	if !ok {
		return
	}

	orders, err := h.svc.GetTableHistoryToday(ctx.Request.Context(), number)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTableHistory -> h.svc.GetTableHistoryToday -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleSettleTable godoc
// @Summary      Settle a table
// @Description  Closes every active order for the table (active=false, status=paid) and frees the table, all in one transaction. A table with no active orders settles as a no-op.
// @Tags         tables,orders
// @Produce      json
// @Param        tableNumber  path      int  true  "Table number"
// @Success      200          {object}  response.SettlementResponse
// @Failure      400          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /tables/number/{tableNumber}/settle [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleSettleTable(ctx *gin.Context) {
	number, ok := parseTableNumber(ctx)
	if !ok {
		return
	}

	closed, table, err := h.svc.SettleTable(ctx.Request.Context(), number)
	if err != nil {
		if errors.Is(err, service.ErrTableNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("table", "number", number))
			return
		}

		err = fmt.Errorf("v1.HandleSettleTable -> h.svc.SettleTable -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.feed.Publish(domain.KitchenEvent{
		Type:        "table_settled",
		TableNumber: number,
	})

	ctx.JSON(http.StatusOK, response.SettlementResponse{
		Message:      fmt.Sprintf("table %v settled", number),
		ClosedOrders: closed,
		Table:        table,
	})
}
