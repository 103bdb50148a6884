package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

var (
	ErrTableNotFound     = repository.ErrTableNotFound
	ErrTableNumberExists = repository.ErrTableNumberExists
	ErrInvalidState      = errors.New("unrecognized table state")
)

type TableRepository interface {
	Create(ctx context.Context, table domain.Table) (domain.Table, error)
	FindAll(ctx context.Context) ([]domain.Table, error)
	FindByID(ctx context.Context, id uint) (domain.Table, error)
	FindByNumber(ctx context.Context, number int) (domain.Table, error)
	UpdateState(ctx context.Context, id uint, state string) (domain.Table, error)
}

type TableService struct {
	repo TableRepository
}

func NewTableService(repo TableRepository) *TableService {
	return &TableService{
		repo: repo,
	}
}

func (s *TableService) GetTables(ctx context.Context) ([]domain.Table, error) {
	tables, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return tables, nil
}

func (s *TableService) GetTableByNumber(ctx context.Context, number int) (domain.Table, error) {
	table, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.FindByNumber -> %w", err)
	}

	return table, nil
}

func (s *TableService) CreateTable(ctx context.Context, number int, state string) (domain.Table, error) {
	if state == "" {
		state = domain.TableAvailable
	}
	if !domain.IsValidTableState(state) {
		return domain.Table{}, ErrInvalidState
	}

	created, err := s.repo.Create(ctx, domain.Table{
		Number: number,
		State:  state,
	})
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateState transitions the table to a recognized state. Changes are logged
// for audit.
func (s *TableService) UpdateState(ctx context.Context, id uint, state string) (domain.Table, error) {
	if !domain.IsValidTableState(state) {
		return domain.Table{}, ErrInvalidState
	}

	table, err := s.repo.UpdateState(ctx, id, state)
	if err != nil {
		return domain.Table{}, fmt.Errorf("s.repo.UpdateState -> %w", err)
	}

	zap.L().Info("table state changed",
		zap.Uint("table_id", table.ID),
		zap.Int("table_number", table.Number),
		zap.String("state", state),
	)

	return table, nil
}
