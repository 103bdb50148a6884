package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError is returned when an outbound stock adjustment would
// drive the counter negative. It carries what was available at the time the
// conditional update was rejected.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Category    string
	Price       float64 `gorm:"not null"`
	Stock       int     `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func (d *ProductDAO) Insert(ctx context.Context, product Product) (Product, error) {
	result := d.db.WithContext(ctx).Create(&product)
	if result.Error != nil {
		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) FindByID(ctx context.Context, id uint) (Product, error) {
	var product Product

	result := d.db.WithContext(ctx).First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) FindAll(ctx context.Context) ([]Product, error) {
	var products []Product

	result := d.db.WithContext(ctx).Order("id").Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

func (d *ProductDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// adjustStock applies delta to the product's stock counter as a single
// conditional UPDATE. For negative deltas the `stock >= ?` guard is part of the
// statement itself, so two concurrent outbound movements can never both pass
// validation against a stale value. Must run inside the caller's transaction.
func adjustStock(tx *gorm.DB, productID uint, delta int) (int, error) {
	query := tx.Model(&Product{}).Where("id = ?", productID)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}

	result := query.UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		// Either the product is gone or the guard rejected the debit.
		var product Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, err
		}

		return 0, &InsufficientStockError{
			ProductID: productID,
			Requested: -delta,
			Available: product.Stock,
		}
	}

	var product Product
	if err := tx.First(&product, productID).Error; err != nil {
		return 0, err
	}

	return product.Stock, nil
}
