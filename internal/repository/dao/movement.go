package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMovementNotFound  = errors.New("stock movement not found")
	ErrConflictingUpdate = errors.New("stock movement changed concurrently")
)

type StockMovement struct {
	ID          uint   `gorm:"primaryKey"`
	ProductID   uint   `gorm:"not null;index"`
	ProductName string `gorm:"not null"`
	Type        string `gorm:"not null"` // "in" or "out"
	Quantity    int    `gorm:"not null"`
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type MovementDAO struct {
	db *gorm.DB
}

func NewMovementDAO(db *gorm.DB) *MovementDAO {
	return &MovementDAO{
		db: db,
	}
}

// stockDelta translates a movement into the signed adjustment it applies to
// the product counter.
func stockDelta(movementType string, quantity int) int {
	if movementType == "out" {
		return -quantity
	}
	return quantity
}

// InsertApplied appends the ledger entry and adjusts the product counter in
// one transaction. Both effects become visible together or not at all; a
// rejected debit leaves the ledger untouched.
func (d *MovementDAO) InsertApplied(ctx context.Context, movement StockMovement) (StockMovement, int, error) {
	var newStock int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := adjustStock(tx, movement.ProductID, stockDelta(movement.Type, movement.Quantity))
		if err != nil {
			return err
		}
		newStock = stock

		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return StockMovement{}, 0, err
	}

	return movement, newStock, nil
}

// UpdateApplied rewrites a historical movement as "undo old effect, apply new
// effect, persist row", all inside one transaction. The original row is locked
// for the duration so a concurrent correction cannot interleave.
func (d *MovementDAO) UpdateApplied(ctx context.Context, movement StockMovement) (StockMovement, error) {
	var updated StockMovement

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original StockMovement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&original, movement.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovementNotFound
			}
			return err
		}

		// Reverse the original effect before touching the row.
		if _, err = adjustStock(tx, original.ProductID, -stockDelta(original.Type, original.Quantity)); err != nil {
			return err
		}

		if _, err = adjustStock(tx, movement.ProductID, stockDelta(movement.Type, movement.Quantity)); err != nil {
			return err
		}

		updated = original
		updated.ProductID = movement.ProductID
		updated.ProductName = movement.ProductName
		updated.Type = movement.Type
		updated.Quantity = movement.Quantity
		updated.Notes = movement.Notes

		result := tx.Model(&StockMovement{}).Where("id = ?", original.ID).Updates(map[string]interface{}{
			"product_id":   updated.ProductID,
			"product_name": updated.ProductName,
			"type":         updated.Type,
			"quantity":     updated.Quantity,
			"notes":        updated.Notes,
			"updated_at":   time.Now(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConflictingUpdate
		}

		return nil
	})
	if err != nil {
		return StockMovement{}, err
	}

	return updated, nil
}

// DeleteApplied reverses the movement's effect on the counter and removes the
// ledger row in one transaction.
func (d *MovementDAO) DeleteApplied(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original StockMovement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&original, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovementNotFound
			}
			return err
		}

		if _, err = adjustStock(tx, original.ProductID, -stockDelta(original.Type, original.Quantity)); err != nil {
			return err
		}

		return tx.Delete(&StockMovement{}, id).Error
	})
}

func (d *MovementDAO) FindByID(ctx context.Context, id uint) (StockMovement, error) {
	var movement StockMovement

	result := d.db.WithContext(ctx).First(&movement, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StockMovement{}, ErrMovementNotFound
		}

		return StockMovement{}, result.Error
	}

	return movement, nil
}

func (d *MovementDAO) FindAll(ctx context.Context) ([]StockMovement, error) {
	var movements []StockMovement

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&movements)
	if result.Error != nil {
		return nil, result.Error
	}

	return movements, nil
}

func (d *MovementDAO) FindByProductID(ctx context.Context, productID uint) ([]StockMovement, error) {
	var movements []StockMovement

	result := d.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements)
	if result.Error != nil {
		return nil, result.Error
	}

	return movements, nil
}
