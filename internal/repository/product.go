package repository

import (
	"context"
	"fmt"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository/dao"
)

var ErrProductNotFound = dao.ErrProductNotFound

// InsufficientStockError carries the available vs. requested quantities of a
// rejected debit.
type InsufficientStockError = dao.InsufficientStockError

type ProductDAO interface {
	Insert(ctx context.Context, product dao.Product) (dao.Product, error)
	FindByID(ctx context.Context, id uint) (dao.Product, error)
	FindAll(ctx context.Context) ([]dao.Product, error)
	Delete(ctx context.Context, id uint) error
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

func (r *ProductRepository) domainToDao(p domain.Product) dao.Product {
	return dao.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

func (r *ProductRepository) daoToDomain(p dao.Product) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	product, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(product), nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	products, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	result := make([]domain.Product, len(products))
	for i, p := range products {
		result[i] = r.daoToDomain(p)
	}

	return result, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}
