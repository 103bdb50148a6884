package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

// fakeStockRepo implements both StockMovementRepository and
// StockProductRepository in memory, honoring the same contract as the DAO: a
// stock adjustment that would drive the counter negative is rejected without
// side effects.
type fakeStockRepo struct {
	products  map[uint]*domain.Product
	movements map[uint]domain.StockMovement
	nextID    uint
}

func newFakeStockRepo(products ...domain.Product) *fakeStockRepo {
	f := &fakeStockRepo{
		products:  make(map[uint]*domain.Product),
		movements: make(map[uint]domain.StockMovement),
	}
	for i := range products {
		p := products[i]
		f.products[p.ID] = &p
	}
	return f
}

func signedDelta(t domain.MovementType, quantity int) int {
	if t == domain.MovementIn {
		return quantity
	}
	return -quantity
}

func (f *fakeStockRepo) adjust(productID uint, delta int) (int, error) {
	p, ok := f.products[productID]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	if delta < 0 && p.Stock < -delta {
		return 0, &repository.InsufficientStockError{
			ProductID: productID,
			Requested: -delta,
			Available: p.Stock,
		}
	}
	p.Stock += delta
	return p.Stock, nil
}

func (f *fakeStockRepo) CreateApplied(_ context.Context, movement domain.StockMovement) (domain.StockMovement, int, error) {
	newStock, err := f.adjust(movement.ProductID, signedDelta(movement.Type, movement.Quantity))
	if err != nil {
		return domain.StockMovement{}, 0, err
	}

	f.nextID++
	movement.ID = f.nextID
	f.movements[movement.ID] = movement

	return movement, newStock, nil
}

func (f *fakeStockRepo) UpdateApplied(_ context.Context, movement domain.StockMovement) (domain.StockMovement, error) {
	original, ok := f.movements[movement.ID]
	if !ok {
		return domain.StockMovement{}, repository.ErrMovementNotFound
	}

	if _, err := f.adjust(original.ProductID, -signedDelta(original.Type, original.Quantity)); err != nil {
		return domain.StockMovement{}, err
	}
	if _, err := f.adjust(movement.ProductID, signedDelta(movement.Type, movement.Quantity)); err != nil {
		// undo the reversal so the whole correction is all-or-nothing
		f.adjust(original.ProductID, signedDelta(original.Type, original.Quantity))
		return domain.StockMovement{}, err
	}

	f.movements[movement.ID] = movement

	return movement, nil
}

func (f *fakeStockRepo) DeleteApplied(_ context.Context, id uint) error {
	movement, ok := f.movements[id]
	if !ok {
		return repository.ErrMovementNotFound
	}

	if _, err := f.adjust(movement.ProductID, -signedDelta(movement.Type, movement.Quantity)); err != nil {
		return err
	}
	delete(f.movements, id)

	return nil
}

func (f *fakeStockRepo) FindByID(_ context.Context, id uint) (domain.StockMovement, error) {
	movement, ok := f.movements[id]
	if !ok {
		return domain.StockMovement{}, repository.ErrMovementNotFound
	}
	return movement, nil
}

func (f *fakeStockRepo) FindAll(_ context.Context) ([]domain.StockMovement, error) {
	result := make([]domain.StockMovement, 0, len(f.movements))
	for _, m := range f.movements {
		result = append(result, m)
	}
	return result, nil
}

func (f *fakeStockRepo) FindByProductID(_ context.Context, productID uint) ([]domain.StockMovement, error) {
	var result []domain.StockMovement
	for _, m := range f.movements {
		if m.ProductID == productID {
			result = append(result, m)
		}
	}
	return result, nil
}

// FindByID on products satisfies StockProductRepository.
func (f *fakeStockRepo) findProduct(_ context.Context, id uint) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}
	return *p, nil
}

type fakeProductFinder struct {
	repo *fakeStockRepo
}

func (f fakeProductFinder) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	return f.repo.findProduct(ctx, id)
}

func newStockServiceForTest(products ...domain.Product) (*StockService, *fakeStockRepo) {
	repo := newFakeStockRepo(products...)
	return NewStockService(repo, fakeProductFinder{repo}), repo
}

var waiter = domain.User{ID: 1, Email: "ana@restvisor.test", Role: domain.RoleWaiter}

func TestStockService_ApplyMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("inbound movement raises stock", func(t *testing.T) {
		svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 0})

		movement, newStock, err := svc.ApplyMovement(ctx, 1, domain.MovementIn, 5, "delivery", waiter)

		require.NoError(t, err)
		assert.Equal(t, 5, newStock)
		assert.Equal(t, "Cola", movement.ProductName)
		assert.Equal(t, "delivery (registered by ana@restvisor.test)", movement.Notes)
		assert.Equal(t, 5, repo.products[1].Stock)
	})

	t.Run("rejects oversell without recording", func(t *testing.T) {
		svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 5})

		_, newStock, err := svc.ApplyMovement(ctx, 1, domain.MovementOut, 4, "", waiter)
		require.NoError(t, err)
		assert.Equal(t, 1, newStock)

		_, _, err = svc.ApplyMovement(ctx, 1, domain.MovementOut, 4, "", waiter)

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 4, stockErr.Requested)
		assert.Equal(t, 1, stockErr.Available)

		// Stock is untouched and only the successful movement is in the ledger.
		assert.Equal(t, 1, repo.products[1].Stock)
		assert.Len(t, repo.movements, 1)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 5})

		_, _, err := svc.ApplyMovement(ctx, 1, "sideways", 1, "", waiter)

		assert.ErrorIs(t, err, ErrInvalidMovementType)
		assert.Empty(t, repo.movements)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 5})

		_, _, err := svc.ApplyMovement(ctx, 1, domain.MovementIn, 0, "", waiter)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Empty(t, repo.movements)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _ := newStockServiceForTest()

		_, _, err := svc.ApplyMovement(ctx, 99, domain.MovementIn, 1, "", waiter)

		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestStockService_ReverseMovement(t *testing.T) {
	ctx := context.Background()
	svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 0})

	_, _, err := svc.ApplyMovement(ctx, 1, domain.MovementIn, 10, "", waiter)
	require.NoError(t, err)

	out, _, err := svc.ApplyMovement(ctx, 1, domain.MovementOut, 4, "", waiter)
	require.NoError(t, err)
	require.Equal(t, 6, repo.products[1].Stock)

	reversal, newStock, err := svc.ReverseMovement(ctx, out.ID, waiter)

	require.NoError(t, err)
	assert.Equal(t, 10, newStock)
	assert.Equal(t, domain.MovementIn, reversal.Type)
	assert.Equal(t, 4, reversal.Quantity)
	assert.Contains(t, reversal.Notes, "reversal of movement 2")

	// The original entry is still in the ledger.
	original, err := svc.GetMovement(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MovementOut, original.Type)

	// Reversing the reversal restores the consumed state; the counter is
	// conserved across the round trip.
	_, newStock, err = svc.ReverseMovement(ctx, reversal.ID, waiter)
	require.NoError(t, err)
	assert.Equal(t, 6, newStock)
	assert.Equal(t, 6, repo.products[1].Stock)
}

func TestStockService_UpdateMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("correction applies reverse then new effect", func(t *testing.T) {
		svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 0})

		in, _, err := svc.ApplyMovement(ctx, 1, domain.MovementIn, 5, "", waiter)
		require.NoError(t, err)

		updated, err := svc.UpdateMovement(ctx, domain.StockMovement{
			ID:        in.ID,
			ProductID: 1,
			Type:      domain.MovementIn,
			Quantity:  8,
		}, waiter)

		require.NoError(t, err)
		assert.Equal(t, 8, updated.Quantity)
		assert.Equal(t, 8, repo.products[1].Stock)
	})

	t.Run("correction that would drive stock negative is rejected whole", func(t *testing.T) {
		svc, repo := newStockServiceWithConsumption(t, ctx)

		// Stock is 2 (in 5, out 3). Shrinking the inbound to 1 would need
		// reversing 5 first, which cannot happen.
		_, err := svc.UpdateMovement(ctx, domain.StockMovement{
			ID:        1,
			ProductID: 1,
			Type:      domain.MovementIn,
			Quantity:  1,
		}, waiter)

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 2, repo.products[1].Stock)

		unchanged, findErr := svc.GetMovement(ctx, 1)
		require.NoError(t, findErr)
		assert.Equal(t, 5, unchanged.Quantity)
	})
}

func newStockServiceWithConsumption(t *testing.T, ctx context.Context) (*StockService, *fakeStockRepo) {
	t.Helper()

	svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 0})

	_, _, err := svc.ApplyMovement(ctx, 1, domain.MovementIn, 5, "", waiter)
	require.NoError(t, err)
	_, _, err = svc.ApplyMovement(ctx, 1, domain.MovementOut, 3, "", waiter)
	require.NoError(t, err)

	return svc, repo
}

func TestStockService_DeleteMovement(t *testing.T) {
	ctx := context.Background()
	svc, repo := newStockServiceForTest(domain.Product{ID: 1, Name: "Cola", Stock: 0})

	in, _, err := svc.ApplyMovement(ctx, 1, domain.MovementIn, 5, "", waiter)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovement(ctx, in.ID))

	assert.Equal(t, 0, repo.products[1].Stock)
	assert.Empty(t, repo.movements)

	assert.ErrorIs(t, svc.DeleteMovement(ctx, in.ID), ErrMovementNotFound)
}
