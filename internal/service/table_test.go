package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

type fakeTableRepo struct {
	tables map[uint]*domain.Table
	nextID uint
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{tables: make(map[uint]*domain.Table)}
}

func (f *fakeTableRepo) Create(_ context.Context, table domain.Table) (domain.Table, error) {
	for _, t := range f.tables {
		if t.Number == table.Number {
			return domain.Table{}, repository.ErrTableNumberExists
		}
	}
	f.nextID++
	table.ID = f.nextID
	f.tables[table.ID] = &table
	return table, nil
}

func (f *fakeTableRepo) FindAll(_ context.Context) ([]domain.Table, error) {
	result := make([]domain.Table, 0, len(f.tables))
	for _, t := range f.tables {
		result = append(result, *t)
	}
	return result, nil
}

func (f *fakeTableRepo) FindByID(_ context.Context, id uint) (domain.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return domain.Table{}, repository.ErrTableNotFound
	}
	return *t, nil
}

func (f *fakeTableRepo) FindByNumber(_ context.Context, number int) (domain.Table, error) {
	for _, t := range f.tables {
		if t.Number == number {
			return *t, nil
		}
	}
	return domain.Table{}, repository.ErrTableNotFound
}

func (f *fakeTableRepo) UpdateState(_ context.Context, id uint, state string) (domain.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return domain.Table{}, repository.ErrTableNotFound
	}
	t.State = state
	return *t, nil
}

func TestTableService_CreateTable(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to available", func(t *testing.T) {
		svc := NewTableService(newFakeTableRepo())

		table, err := svc.CreateTable(ctx, 4, "")

		require.NoError(t, err)
		assert.Equal(t, domain.TableAvailable, table.State)
	})

	t.Run("rejects unknown state", func(t *testing.T) {
		svc := NewTableService(newFakeTableRepo())

		_, err := svc.CreateTable(ctx, 4, "upside down")

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("duplicate number", func(t *testing.T) {
		svc := NewTableService(newFakeTableRepo())

		_, err := svc.CreateTable(ctx, 4, "")
		require.NoError(t, err)

		_, err = svc.CreateTable(ctx, 4, "")
		assert.ErrorIs(t, err, ErrTableNumberExists)
	})
}

func TestTableService_UpdateState(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTableRepo()
	svc := NewTableService(repo)

	created, err := svc.CreateTable(ctx, 4, "")
	require.NoError(t, err)

	t.Run("valid transition", func(t *testing.T) {
		table, err := svc.UpdateState(ctx, created.ID, domain.TableOccupied)

		require.NoError(t, err)
		assert.Equal(t, domain.TableOccupied, table.State)
	})

	t.Run("rejects unknown state and leaves the table untouched", func(t *testing.T) {
		_, err := svc.UpdateState(ctx, created.ID, "upside down")

		assert.ErrorIs(t, err, ErrInvalidState)

		table, findErr := svc.GetTableByNumber(ctx, 4)
		require.NoError(t, findErr)
		assert.Equal(t, domain.TableOccupied, table.State)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := svc.UpdateState(ctx, 999, domain.TableReserved)

		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}
