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

type TableService interface {
	GetTables(ctx context.Context) ([]domain.Table, error)
	GetTableByNumber(ctx context.Context, number int) (domain.Table, error)
	CreateTable(ctx context.Context, number int, state string) (domain.Table, error)
	UpdateState(ctx context.Context, id uint, state string) (domain.Table, error)
}

type TableHandler struct {
	svc TableService
}

func NewTableHandler(svc TableService) *TableHandler {
	return &TableHandler{
		svc: svc,
	}
}

// HandleGetTables godoc
// @Summary      List all tables
// @Tags         tables
// @Produce      json
// @Success      200  {array}   domain.Table
// @Failure      500  {object}  response.Err
// @Router       /tables [get]
// @Security     BearerAuth
func (h *TableHandler) HandleGetTables(ctx *gin.Context) {
	tables, err := h.svc.GetTables(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTables -> h.svc.GetTables -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tables)
}

// HandleCreateTable godoc
// @Summary      Create a new table
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTableRequest  true  "request body"
// @Success      201      {object}  domain.Table
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tables [post]
// @Security     BearerAuth
func (h *TableHandler) HandleCreateTable(ctx *gin.Context) {
	var req request.CreateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.CreateTable(ctx.Request.Context(), req.Number, req.State)
	if err != nil {
		if errors.Is(err, service.ErrTableNumberExists) || errors.Is(err, service.ErrInvalidState) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateTable -> h.svc.CreateTable -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, table)
}

// HandleUpdateTableState godoc
// @Summary      Update a table's state
// @Description  Moves the table to available, occupied or reserved.
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        tableID  path      int                              true  "Table ID"
// @Param        request  body      request.UpdateTableStateRequest  true  "request body"
// @Success      200      {object}  domain.Table
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tables/{tableID}/state [put]
// @Security     BearerAuth
func (h *TableHandler) HandleUpdateTableState(ctx *gin.Context) {
	rawID := ctx.Param("tableID")
	tableID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid table ID %v", rawID)))
		return
	}

	var req request.UpdateTableStateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.UpdateState(ctx.Request.Context(), uint(tableID), req.State)
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		if errors.Is(err, service.ErrTableNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("table", "ID", tableID))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateTableState -> h.svc.UpdateState -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, table)
}
