package repository

import (
	"context"
	"fmt"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository/dao"
)

var (
	ErrTableNotFound     = dao.ErrTableNotFound
	ErrTableNumberExists = dao.ErrTableNumberExists
)

type TableDAO interface {
	Insert(ctx context.Context, table dao.Table) (dao.Table, error)
	FindAll(ctx context.Context) ([]dao.Table, error)
	FindByID(ctx context.Context, id uint) (dao.Table, error)
	FindByNumber(ctx context.Context, number int) (dao.Table, error)
	UpdateState(ctx context.Context, id uint, state string) (dao.Table, error)
}

type TableRepository struct {
	dao TableDAO
}

func NewTableRepository(dao TableDAO) *TableRepository {
	return &TableRepository{
		dao: dao,
	}
}

func (r *TableRepository) daoToDomain(t dao.Table) domain.Table {
	return domain.Table{
		ID:     t.ID,
		Number: t.Number,
		State:  t.State,
	}
}

func (r *TableRepository) Create(ctx context.Context, table domain.Table) (domain.Table, error) {
	created, err := r.dao.Insert(ctx, dao.Table{
		Number: table.Number,
		State:  table.State,
	})
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TableRepository) FindAll(ctx context.Context) ([]domain.Table, error) {
	tables, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	result := make([]domain.Table, len(tables))
	for i, t := range tables {
		result[i] = r.daoToDomain(t)
	}

	return result, nil
}

func (r *TableRepository) FindByID(ctx context.Context, id uint) (domain.Table, error) {
	table, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(table), nil
}

func (r *TableRepository) FindByNumber(ctx context.Context, number int) (domain.Table, error) {
	table, err := r.dao.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.FindByNumber -> %w", err)
	}

	return r.daoToDomain(table), nil
}

func (r *TableRepository) UpdateState(ctx context.Context, id uint, state string) (domain.Table, error) {
	table, err := r.dao.UpdateState(ctx, id, state)
	if err != nil {
		return domain.Table{}, fmt.Errorf("r.dao.UpdateState -> %w", err)
	}

	return r.daoToDomain(table), nil
}
