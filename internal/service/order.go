package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

var (
	ErrOrderNotFound  = repository.ErrOrderNotFound
	ErrNoActiveOrders = repository.ErrNoActiveOrders
	ErrInvalidStatus  = errors.New("unrecognized order status")
)

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindAll(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error)
	FindActive(ctx context.Context) ([]domain.Order, error)
	FindByTable(ctx context.Context, tableNumber int) ([]domain.Order, error)
	FindActiveByTable(ctx context.Context, tableNumber int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (domain.Order, error)
	Delete(ctx context.Context, id uint) error
	CreateLine(ctx context.Context, line domain.OrderLine, notes string) (domain.OrderLine, error)
	FindLinesByOrderID(ctx context.Context, orderID uint) ([]domain.OrderLine, error)
	SettleTable(ctx context.Context, tableNumber int) ([]domain.Order, domain.Table, error)
}

type OrderTableRepository interface {
	FindByNumber(ctx context.Context, number int) (domain.Table, error)
}

// OrderFilter re-exports the repository filter for handlers.
type OrderFilter = repository.OrderFilter

type OrderService struct {
	repo      OrderRepository
	tableRepo OrderTableRepository
}

func NewOrderService(repo OrderRepository, tableRepo OrderTableRepository) *OrderService {
	return &OrderService{
		repo:      repo,
		tableRepo: tableRepo,
	}
}

// CreateOrder opens a new order row for a table visit. Every order starts
// pending and active; a table accumulates one row per round it orders.
func (s *OrderService) CreateOrder(ctx context.Context, tableNumber int, details string) (domain.Order, error) {
	if _, err := s.tableRepo.FindByNumber(ctx, tableNumber); err != nil {
		return domain.Order{}, fmt.Errorf("s.tableRepo.FindByNumber -> %w", err)
	}

	order := domain.Order{
		TableNumber: tableNumber,
		Status:      domain.StatusPending,
		Active:      true,
		Details:     details,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return order, nil
}

func (s *OrderService) GetOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" {
		status, ok := domain.NormalizeStatus(filter.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		filter.Status = status
	}

	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return orders, nil
}

// GetActiveOrders returns every undelivered active order for the kitchen
// dashboard, oldest first.
func (s *OrderService) GetActiveOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	return orders, nil
}

func (s *OrderService) GetOrdersByTable(ctx context.Context, tableNumber int) ([]domain.Order, error) {
	orders, err := s.repo.FindByTable(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByTable -> %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}

	return orders, nil
}

// GetTableHistoryToday returns today's orders for a table, newest first. An
// empty history is not an error.
func (s *OrderService) GetTableHistoryToday(ctx context.Context, tableNumber int) ([]domain.Order, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	orders, err := s.repo.FindAll(ctx, OrderFilter{
		TableNumber: tableNumber,
		From:        start,
		To:          start.AddDate(0, 0, 1).Add(-time.Nanosecond),
	})
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return orders, nil
}

// UpdateStatus moves an order to any recognized status. Transitions are not
// forced to be monotonic; the kitchen regularly jumps orders back after a
// mistake. Legacy Spanish statuses are normalized before storage.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (domain.Order, error) {
	canonical, ok := domain.NormalizeStatus(status)
	if !ok {
		return domain.Order{}, ErrInvalidStatus
	}

	order, err := s.repo.UpdateStatus(ctx, id, canonical)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// AddLine attaches a product to an order. The repository inserts the line,
// debits the stock counter, and appends the ledger entry in one transaction,
// so an oversell rejection leaves no trace of the line.
func (s *OrderService) AddLine(ctx context.Context, orderID, productID uint, quantity int, actor domain.User) (domain.OrderLine, error) {
	if quantity <= 0 {
		return domain.OrderLine{}, ErrInvalidQuantity
	}

	notes := auditNotes(fmt.Sprintf("order %v", orderID), actor)
	line, err := s.repo.CreateLine(ctx, domain.OrderLine{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	}, notes)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("s.repo.CreateLine -> %w", err)
	}

	return line, nil
}

func (s *OrderService) GetLines(ctx context.Context, orderID uint) ([]domain.OrderLine, error) {
	if _, err := s.repo.FindByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	lines, err := s.repo.FindLinesByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindLinesByOrderID -> %w", err)
	}

	return lines, nil
}

// ConsolidateTable folds every active order row for the table into one logical
// order. Read-only; underlying rows are never touched.
func (s *OrderService) ConsolidateTable(ctx context.Context, tableNumber int) (domain.ConsolidatedOrder, error) {
	orders, err := s.repo.FindActiveByTable(ctx, tableNumber)
	if err != nil {
		return domain.ConsolidatedOrder{}, fmt.Errorf("s.repo.FindActiveByTable -> %w", err)
	}

	consolidated, ok := domain.Consolidate(orders)
	if !ok {
		return domain.ConsolidatedOrder{}, ErrNoActiveOrders
	}
	consolidated.TableNumber = tableNumber

	return consolidated, nil
}

// SettleTable closes out every active order for the table and frees it. The
// batch flip and the table transition happen as one unit; a table with no
// active orders settles as a no-op.
func (s *OrderService) SettleTable(ctx context.Context, tableNumber int) ([]domain.Order, domain.Table, error) {
	closed, table, err := s.repo.SettleTable(ctx, tableNumber)
	if err != nil {
		return nil, domain.Table{}, fmt.Errorf("s.repo.SettleTable -> %w", err)
	}

	return closed, table, nil
}
