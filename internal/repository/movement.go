package repository

import (
	"context"
	"fmt"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository/dao"
)

var (
	ErrMovementNotFound  = dao.ErrMovementNotFound
	ErrConflictingUpdate = dao.ErrConflictingUpdate
)

type MovementDAO interface {
	InsertApplied(ctx context.Context, movement dao.StockMovement) (dao.StockMovement, int, error)
	UpdateApplied(ctx context.Context, movement dao.StockMovement) (dao.StockMovement, error)
	DeleteApplied(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.StockMovement, error)
	FindAll(ctx context.Context) ([]dao.StockMovement, error)
	FindByProductID(ctx context.Context, productID uint) ([]dao.StockMovement, error)
}

type MovementRepository struct {
	dao MovementDAO
}

func NewMovementRepository(dao MovementDAO) *MovementRepository {
	return &MovementRepository{
		dao: dao,
	}
}

func (r *MovementRepository) domainToDao(m domain.StockMovement) dao.StockMovement {
	return dao.StockMovement{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *MovementRepository) daoToDomain(m dao.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Type:        domain.MovementType(m.Type),
		Quantity:    m.Quantity,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateApplied appends the ledger entry and applies its stock effect
// atomically, returning the created movement and the product's new stock.
func (r *MovementRepository) CreateApplied(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, int, error) {
	created, newStock, err := r.dao.InsertApplied(ctx, r.domainToDao(movement))
	if err != nil {
		return domain.StockMovement{}, 0, fmt.Errorf("r.dao.InsertApplied -> %w", err)
	}

	return r.daoToDomain(created), newStock, nil
}

func (r *MovementRepository) UpdateApplied(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, error) {
	updated, err := r.dao.UpdateApplied(ctx, r.domainToDao(movement))
	if err != nil {
		return domain.StockMovement{}, fmt.Errorf("r.dao.UpdateApplied -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *MovementRepository) DeleteApplied(ctx context.Context, id uint) error {
	if err := r.dao.DeleteApplied(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteApplied -> %w", err)
	}

	return nil
}

func (r *MovementRepository) FindByID(ctx context.Context, id uint) (domain.StockMovement, error) {
	movement, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.StockMovement{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(movement), nil
}

func (r *MovementRepository) FindAll(ctx context.Context) ([]domain.StockMovement, error) {
	movements, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	result := make([]domain.StockMovement, len(movements))
	for i, m := range movements {
		result[i] = r.daoToDomain(m)
	}

	return result, nil
}

func (r *MovementRepository) FindByProductID(ctx context.Context, productID uint) ([]domain.StockMovement, error) {
	movements, err := r.dao.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByProductID -> %w", err)
	}

	result := make([]domain.StockMovement, len(movements))
	for i, m := range movements {
		result[i] = r.daoToDomain(m)
	}

	return result, nil
}
