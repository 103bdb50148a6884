package repository

import (
	"context"
	"fmt"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository/dao"
)

var (
	ErrOrderNotFound  = dao.ErrOrderNotFound
	ErrNoActiveOrders = dao.ErrNoActiveOrders
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.Order) (dao.Order, error)
	FindByID(ctx context.Context, id uint) (dao.Order, error)
	FindAll(ctx context.Context, filter dao.OrderFilter) ([]dao.Order, error)
	FindActive(ctx context.Context) ([]dao.Order, error)
	FindByTable(ctx context.Context, tableNumber int) ([]dao.Order, error)
	FindActiveByTable(ctx context.Context, tableNumber int) ([]dao.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (dao.Order, error)
	Delete(ctx context.Context, id uint) error
	InsertLine(ctx context.Context, line dao.OrderLine, notes string) (dao.OrderLine, error)
	FindLinesByOrderID(ctx context.Context, orderID uint) ([]dao.OrderLine, error)
	SettleTable(ctx context.Context, tableNumber int) ([]dao.Order, dao.Table, error)
}

// OrderFilter mirrors dao.OrderFilter at the domain boundary.
type OrderFilter = dao.OrderFilter

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (r *OrderRepository) lineDaoToDomain(l dao.OrderLine) domain.OrderLine {
	line := domain.OrderLine{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
	}

	if l.Product.ID != 0 {
		product := domain.Product{
			ID:          l.Product.ID,
			Name:        l.Product.Name,
			Description: l.Product.Description,
			Category:    l.Product.Category,
			Price:       l.Product.Price,
			Stock:       l.Product.Stock,
		}
		line.Product = &product
	}

	return line
}

func (r *OrderRepository) daoToDomain(o dao.Order) domain.Order {
	order := domain.Order{
		ID:          o.ID,
		TableNumber: o.TableNumber,
		Status:      o.Status,
		Active:      o.Active,
		Details:     o.Details,
		CreatedAt:   o.CreatedAt,
	}

	if len(o.Lines) > 0 {
		order.Lines = make([]domain.OrderLine, len(o.Lines))
		for i, l := range o.Lines {
			order.Lines[i] = r.lineDaoToDomain(l)
		}
	}

	return order
}

func (r *OrderRepository) daosToDomain(orders []dao.Order) []domain.Order {
	result := make([]domain.Order, len(orders))
	for i, o := range orders {
		result[i] = r.daoToDomain(o)
	}
	return result
}

func (r *OrderRepository) tableDaoToDomain(t dao.Table) domain.Table {
	return domain.Table{
		ID:     t.ID,
		Number: t.Number,
		State:  t.State,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := r.dao.Insert(ctx, dao.Order{
		TableNumber: order.TableNumber,
		Status:      order.Status,
		Active:      order.Active,
		Details:     order.Details,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	order, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(order), nil
}

func (r *OrderRepository) FindAll(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	orders, err := r.dao.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(orders), nil
}

func (r *OrderRepository) FindActive(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.dao.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return r.daosToDomain(orders), nil
}

func (r *OrderRepository) FindByTable(ctx context.Context, tableNumber int) ([]domain.Order, error) {
	orders, err := r.dao.FindByTable(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTable -> %w", err)
	}

	return r.daosToDomain(orders), nil
}

func (r *OrderRepository) FindActiveByTable(ctx context.Context, tableNumber int) ([]domain.Order, error) {
	orders, err := r.dao.FindActiveByTable(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveByTable -> %w", err)
	}

	return r.daosToDomain(orders), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) (domain.Order, error) {
	order, err := r.dao.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return r.daoToDomain(order), nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *OrderRepository) CreateLine(ctx context.Context, line domain.OrderLine, notes string) (domain.OrderLine, error) {
	created, err := r.dao.InsertLine(ctx, dao.OrderLine{
		OrderID:   line.OrderID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	}, notes)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("r.dao.InsertLine -> %w", err)
	}

	return r.lineDaoToDomain(created), nil
}

func (r *OrderRepository) FindLinesByOrderID(ctx context.Context, orderID uint) ([]domain.OrderLine, error) {
	lines, err := r.dao.FindLinesByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLinesByOrderID -> %w", err)
	}

	result := make([]domain.OrderLine, len(lines))
	for i, l := range lines {
		result[i] = r.lineDaoToDomain(l)
	}

	return result, nil
}

func (r *OrderRepository) SettleTable(ctx context.Context, tableNumber int) ([]domain.Order, domain.Table, error) {
	closed, table, err := r.dao.SettleTable(ctx, tableNumber)
	if err != nil {
		return nil, domain.Table{}, fmt.Errorf("r.dao.SettleTable -> %w", err)
	}

	return r.daosToDomain(closed), r.tableDaoToDomain(table), nil
}
