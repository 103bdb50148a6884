package dao

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrTableNotFound     = errors.New("table not found")
	ErrTableNumberExists = errors.New("table number already exists")
)

type Table struct {
	ID     uint   `gorm:"primaryKey"`
	Number int    `gorm:"unique;not null"`
	State  string `gorm:"not null;default:available"` // "available", "occupied", or "reserved"
}

type TableDAO struct {
	db *gorm.DB
}

func NewTableDAO(db *gorm.DB) *TableDAO {
	return &TableDAO{
		db: db,
	}
}

func (d *TableDAO) Insert(ctx context.Context, table Table) (Table, error) {
	result := d.db.WithContext(ctx).Create(&table)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_tables_number"`) {
			return Table{}, ErrTableNumberExists
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) FindAll(ctx context.Context) ([]Table, error) {
	var tables []Table

	result := d.db.WithContext(ctx).Order("number").Find(&tables)
	if result.Error != nil {
		return nil, result.Error
	}

	return tables, nil
}

func (d *TableDAO) FindByID(ctx context.Context, id uint) (Table, error) {
	var table Table

	result := d.db.WithContext(ctx).First(&table, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Table{}, ErrTableNotFound
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) FindByNumber(ctx context.Context, number int) (Table, error) {
	var table Table

	result := d.db.WithContext(ctx).First(&table, "number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Table{}, ErrTableNotFound
		}

		return Table{}, result.Error
	}

	return table, nil
}

func (d *TableDAO) UpdateState(ctx context.Context, id uint, state string) (Table, error) {
	var table Table

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		table.State = state
		return tx.Model(&Table{}).Where("id = ?", id).Update("state", state).Error
	})
	if err != nil {
		return Table{}, err
	}

	return table, nil
}
