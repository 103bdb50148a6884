package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

// fakeOrderRepo keeps orders in insertion order, which is also creation order,
// matching the DAO's created_at ASC reads for consolidation and settlement.
type fakeOrderRepo struct {
	orders     []domain.Order
	nextID     uint
	nextLineID uint
	tables     map[int]*domain.Table
	products   map[uint]*domain.Product
	lineNotes  []string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		tables:   make(map[int]*domain.Table),
		products: make(map[uint]*domain.Product),
	}
}

func (f *fakeOrderRepo) addTable(number int) {
	f.tables[number] = &domain.Table{ID: uint(number), Number: number, State: domain.TableOccupied}
}

func (f *fakeOrderRepo) addProduct(p domain.Product) {
	f.products[p.ID] = &p
}

func (f *fakeOrderRepo) find(id uint) (int, bool) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *fakeOrderRepo) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	f.nextID++
	order.ID = f.nextID
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uint) (domain.Order, error) {
	i, ok := f.find(id)
	if !ok {
		return domain.Order{}, repository.ErrOrderNotFound
	}
	return f.orders[i], nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	var result []domain.Order
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.TableNumber != 0 && o.TableNumber != filter.TableNumber {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func (f *fakeOrderRepo) FindActive(_ context.Context) ([]domain.Order, error) {
	var result []domain.Order
	for _, o := range f.orders {
		if o.Active && o.Status != domain.StatusDelivered {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindByTable(_ context.Context, tableNumber int) ([]domain.Order, error) {
	var result []domain.Order
	for _, o := range f.orders {
		if o.TableNumber == tableNumber {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindActiveByTable(_ context.Context, tableNumber int) ([]domain.Order, error) {
	var result []domain.Order
	for _, o := range f.orders {
		if o.TableNumber == tableNumber && o.Active {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uint, status string) (domain.Order, error) {
	i, ok := f.find(id)
	if !ok {
		return domain.Order{}, repository.ErrOrderNotFound
	}
	f.orders[i].Status = status
	return f.orders[i], nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uint) error {
	i, ok := f.find(id)
	if !ok {
		return repository.ErrOrderNotFound
	}
	f.orders = append(f.orders[:i], f.orders[i+1:]...)
	return nil
}

func (f *fakeOrderRepo) CreateLine(_ context.Context, line domain.OrderLine, notes string) (domain.OrderLine, error) {
	i, ok := f.find(line.OrderID)
	if !ok {
		return domain.OrderLine{}, repository.ErrOrderNotFound
	}

	product, ok := f.products[line.ProductID]
	if !ok {
		return domain.OrderLine{}, repository.ErrProductNotFound
	}
	if product.Stock < line.Quantity {
		return domain.OrderLine{}, &repository.InsufficientStockError{
			ProductID: line.ProductID,
			Requested: line.Quantity,
			Available: product.Stock,
		}
	}
	product.Stock -= line.Quantity

	f.nextLineID++
	line.ID = f.nextLineID
	copied := *product
	line.Product = &copied
	f.orders[i].Lines = append(f.orders[i].Lines, line)
	f.lineNotes = append(f.lineNotes, notes)

	return line, nil
}

func (f *fakeOrderRepo) FindLinesByOrderID(_ context.Context, orderID uint) ([]domain.OrderLine, error) {
	i, ok := f.find(orderID)
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return f.orders[i].Lines, nil
}

func (f *fakeOrderRepo) SettleTable(_ context.Context, tableNumber int) ([]domain.Order, domain.Table, error) {
	table, ok := f.tables[tableNumber]
	if !ok {
		return nil, domain.Table{}, repository.ErrTableNotFound
	}

	var closed []domain.Order
	for i := range f.orders {
		if f.orders[i].TableNumber == tableNumber && f.orders[i].Active {
			f.orders[i].Active = false
			f.orders[i].Status = domain.StatusPaid
			closed = append(closed, f.orders[i])
		}
	}
	if len(closed) > 0 {
		table.State = domain.TableAvailable
	}

	return closed, *table, nil
}

func (f *fakeOrderRepo) FindByNumber(_ context.Context, number int) (domain.Table, error) {
	table, ok := f.tables[number]
	if !ok {
		return domain.Table{}, repository.ErrTableNotFound
	}
	return *table, nil
}

func newOrderServiceForTest() (*OrderService, *fakeOrderRepo) {
	repo := newFakeOrderRepo()
	return NewOrderService(repo, repo), repo
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a pending active order", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)

		order, err := svc.CreateOrder(ctx, 4, "no onions")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, order.Status)
		assert.True(t, order.Active)
		assert.Equal(t, 4, order.TableNumber)
	})

	t.Run("unknown table", func(t *testing.T) {
		svc, _ := newOrderServiceForTest()

		_, err := svc.CreateOrder(ctx, 9, "")

		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("each round gets its own row", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)

		first, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)
		second, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Len(t, repo.orders, 2)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := newOrderServiceForTest()
	repo.addTable(4)

	order, err := svc.CreateOrder(ctx, 4, "")
	require.NoError(t, err)

	t.Run("normalizes legacy statuses", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, order.ID, "listo")

		require.NoError(t, err)
		assert.Equal(t, domain.StatusReady, updated.Status)
	})

	t.Run("rejects unknown status and leaves the order untouched", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, order.ID, "flying")

		assert.ErrorIs(t, err, ErrInvalidStatus)

		current, findErr := svc.GetOrder(ctx, order.ID)
		require.NoError(t, findErr)
		assert.Equal(t, domain.StatusReady, current.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, 999, domain.StatusReady)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderService_AddLine(t *testing.T) {
	ctx := context.Background()

	t.Run("debits stock and records the actor", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)
		repo.addProduct(domain.Product{ID: 1, Name: "Cola", Stock: 10})

		order, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		line, err := svc.AddLine(ctx, order.ID, 1, 3, waiter)

		require.NoError(t, err)
		assert.Equal(t, 3, line.Quantity)
		assert.Equal(t, 7, repo.products[1].Stock)

		require.Len(t, repo.lineNotes, 1)
		assert.Equal(t, fmt.Sprintf("order %v (registered by %v)", order.ID, waiter.Email), repo.lineNotes[0])
	})

	t.Run("oversell leaves no line behind", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)
		repo.addProduct(domain.Product{ID: 1, Name: "Cola", Stock: 2})

		order, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		_, err = svc.AddLine(ctx, order.ID, 1, 5, waiter)

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 5, stockErr.Requested)
		assert.Equal(t, 2, stockErr.Available)

		lines, findErr := svc.GetLines(ctx, order.ID)
		require.NoError(t, findErr)
		assert.Empty(t, lines)
		assert.Equal(t, 2, repo.products[1].Stock)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)

		order, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		_, err = svc.AddLine(ctx, order.ID, 1, 0, waiter)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestOrderService_ConsolidateTable(t *testing.T) {
	ctx := context.Background()

	t.Run("merges active rounds into one logical order", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)
		repo.addProduct(domain.Product{ID: 1, Name: "Cola", Price: 2.5, Stock: 100})
		repo.addProduct(domain.Product{ID: 2, Name: "Fries", Price: 3.0, Stock: 100})

		first, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)
		second, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		_, err = svc.AddLine(ctx, first.ID, 1, 2, waiter)
		require.NoError(t, err)
		_, err = svc.AddLine(ctx, second.ID, 1, 1, waiter)
		require.NoError(t, err)
		_, err = svc.AddLine(ctx, second.ID, 2, 3, waiter)
		require.NoError(t, err)

		consolidated, err := svc.ConsolidateTable(ctx, 4)

		require.NoError(t, err)
		assert.Equal(t, first.ID, consolidated.ID)
		assert.Equal(t, 4, consolidated.TableNumber)

		require.Len(t, consolidated.Lines, 2)
		assert.Equal(t, uint(1), consolidated.Lines[0].ProductID)
		assert.Equal(t, 3, consolidated.Lines[0].Quantity)
		assert.Equal(t, uint(2), consolidated.Lines[1].ProductID)
		assert.Equal(t, 3, consolidated.Lines[1].Quantity)
	})

	t.Run("no active orders", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)

		_, err := svc.ConsolidateTable(ctx, 4)

		assert.ErrorIs(t, err, ErrNoActiveOrders)
	})

	t.Run("settled rounds are excluded", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)
		repo.addProduct(domain.Product{ID: 1, Name: "Cola", Price: 2.5, Stock: 100})

		order, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)
		_, err = svc.AddLine(ctx, order.ID, 1, 2, waiter)
		require.NoError(t, err)

		_, _, err = svc.SettleTable(ctx, 4)
		require.NoError(t, err)

		_, err = svc.ConsolidateTable(ctx, 4)
		assert.ErrorIs(t, err, ErrNoActiveOrders)
	})
}

func TestOrderService_SettleTable(t *testing.T) {
	ctx := context.Background()

	t.Run("closes every active order and frees the table", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)

		first, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)
		second, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		closed, table, err := svc.SettleTable(ctx, 4)

		require.NoError(t, err)
		require.Len(t, closed, 2)
		for _, o := range closed {
			assert.False(t, o.Active)
			assert.Equal(t, domain.StatusPaid, o.Status)
		}
		assert.Equal(t, domain.TableAvailable, table.State)

		for _, id := range []uint{first.ID, second.ID} {
			stored, findErr := svc.GetOrder(ctx, id)
			require.NoError(t, findErr)
			assert.False(t, stored.Active)
			assert.Equal(t, domain.StatusPaid, stored.Status)
		}
	})

	t.Run("table with no active orders keeps its state", func(t *testing.T) {
		svc, repo := newOrderServiceForTest()
		repo.addTable(4)
		repo.tables[4].State = domain.TableReserved

		closed, table, err := svc.SettleTable(ctx, 4)

		require.NoError(t, err)
		assert.Empty(t, closed)
		assert.Equal(t, domain.TableReserved, table.State)
		assert.Equal(t, domain.TableReserved, repo.tables[4].State)
	})

	t.Run("unknown table", func(t *testing.T) {
		svc, _ := newOrderServiceForTest()

		_, _, err := svc.SettleTable(ctx, 9)

		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestOrderService_GetOrders(t *testing.T) {
	ctx := context.Background()
	svc, repo := newOrderServiceForTest()
	repo.addTable(4)

	order, err := svc.CreateOrder(ctx, 4, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, domain.StatusReady)
	require.NoError(t, err)

	t.Run("filter status is normalized", func(t *testing.T) {
		orders, err := svc.GetOrders(ctx, OrderFilter{Status: "listo"})

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, domain.StatusReady, orders[0].Status)
	})

	t.Run("invalid filter status", func(t *testing.T) {
		_, err := svc.GetOrders(ctx, OrderFilter{Status: "flying"})

		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestOrderService_GetOrdersByTable(t *testing.T) {
	ctx := context.Background()
	svc, repo := newOrderServiceForTest()
	repo.addTable(4)

	t.Run("empty history is not found", func(t *testing.T) {
		_, err := svc.GetOrdersByTable(ctx, 4)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("returns the table's orders", func(t *testing.T) {
		_, err := svc.CreateOrder(ctx, 4, "")
		require.NoError(t, err)

		orders, err := svc.GetOrdersByTable(ctx, 4)

		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})
}
