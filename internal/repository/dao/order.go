package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrNoActiveOrders = errors.New("no active orders for table")
)

// Order references its table by number rather than id. The original schema was
// built that way and the clients depend on it, so the denormalization is kept.
type Order struct {
	ID          uint   `gorm:"primaryKey"`
	TableNumber int    `gorm:"not null;index"`
	Status      string `gorm:"not null"`
	Active      bool   `gorm:"not null;default:true"`
	Details     string

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

type OrderLine struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"not null;index"`
	ProductID uint `gorm:"not null"`
	Quantity  int  `gorm:"not null"`

	Product Product `gorm:"foreignKey:ProductID"`

	CreatedAt time.Time
}

// OrderFilter narrows FindAll. Zero values mean "no constraint".
type OrderFilter struct {
	Status      string
	TableNumber int
	From        time.Time
	To          time.Time
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	result := d.db.WithContext(ctx).Create(&order)
	if result.Error != nil {
		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uint) (Order, error) {
	var order Order

	result := d.db.WithContext(ctx).Preload("Lines").Preload("Lines.Product").First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindAll(ctx context.Context, filter OrderFilter) ([]Order, error) {
	query := d.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Order("created_at DESC")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TableNumber != 0 {
		query = query.Where("table_number = ?", filter.TableNumber)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// FindActive returns every undelivered active order, oldest first, for the
// kitchen dashboard.
func (d *OrderDAO) FindActive(ctx context.Context) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Where("active = ?", true).
		Where("status <> ?", "delivered").
		Order("created_at ASC").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindByTable(ctx context.Context, tableNumber int) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Where("table_number = ?", tableNumber).
		Order("created_at DESC").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// FindActiveByTable returns the active order rows for a table sorted by
// creation time ascending, so the earliest row can act as the representative
// during consolidation. Lines and their products are preloaded.
func (d *OrderDAO) FindActiveByTable(ctx context.Context, tableNumber int) ([]Order, error) {
	var orders []Order

	result := d.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Where("table_number = ? AND active = ?", tableNumber, true).
		Order("created_at ASC").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) UpdateStatus(ctx context.Context, id uint, status string) (Order, error) {
	var order Order

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		order.Status = status
		return tx.Model(&Order{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		return Order{}, err
	}

	return order, nil
}

// Delete removes the order and its lines. The lines go first so the foreign
// key is never dangling even without DB-level cascade.
func (d *OrderDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if err := tx.Where("order_id = ?", id).Delete(&OrderLine{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Order{}, id).Error
	})
}

// InsertLine records the line and debits the product's stock in one
// transaction, appending the matching ledger entry. A rejected debit rolls the
// line back, so a line without its stock effect can never be observed.
func (d *OrderDAO) InsertLine(ctx context.Context, line OrderLine, notes string) (OrderLine, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.First(&order, line.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		var product Product
		if err := tx.First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if err := tx.Create(&line).Error; err != nil {
			return err
		}

		if _, err := adjustStock(tx, line.ProductID, -line.Quantity); err != nil {
			return err
		}

		movement := StockMovement{
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Type:        "out",
			Quantity:    line.Quantity,
			Notes:       notes,
		}

		return tx.Create(&movement).Error
	})
	if err != nil {
		return OrderLine{}, err
	}

	return line, nil
}

func (d *OrderDAO) FindLinesByOrderID(ctx context.Context, orderID uint) ([]OrderLine, error) {
	var lines []OrderLine

	result := d.db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("id").
		Find(&lines)
	if result.Error != nil {
		return nil, result.Error
	}

	return lines, nil
}

// SettleTable flips every active order for the table to inactive/paid and
// frees the table, as one unit. Settling a table with no active orders is a
// no-op that returns the table row with its state untouched.
func (d *OrderDAO) SettleTable(ctx context.Context, tableNumber int) ([]Order, Table, error) {
	var (
		closed []Order
		table  Table
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&table, "number = ?", tableNumber).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("table_number = ? AND active = ?", tableNumber, true).
			Order("created_at ASC").
			Find(&closed).Error
		if err != nil {
			return err
		}

		if len(closed) == 0 {
			return nil
		}

		err = tx.Model(&Order{}).
			Where("table_number = ? AND active = ?", tableNumber, true).
			Updates(map[string]interface{}{"active": false, "status": "paid"}).Error
		if err != nil {
			return err
		}

		for i := range closed {
			closed[i].Active = false
			closed[i].Status = "paid"
		}

		table.State = "available"
		return tx.Model(&Table{}).Where("id = ?", table.ID).Update("state", table.State).Error
	})
	if err != nil {
		return nil, Table{}, err
	}

	return closed, table, nil
}
