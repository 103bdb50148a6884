package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

var (
	ErrProductNotFound     = repository.ErrProductNotFound
	ErrMovementNotFound    = repository.ErrMovementNotFound
	ErrConflictingUpdate   = repository.ErrConflictingUpdate
	ErrInvalidMovementType = errors.New("movement type must be \"in\" or \"out\"")
	ErrInvalidQuantity     = errors.New("movement quantity must be positive")
)

// InsufficientStockError carries available vs. requested amounts of a rejected
// outbound movement.
type InsufficientStockError = repository.InsufficientStockError

type StockMovementRepository interface {
	CreateApplied(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, int, error)
	UpdateApplied(ctx context.Context, movement domain.StockMovement) (domain.StockMovement, error)
	DeleteApplied(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.StockMovement, error)
	FindAll(ctx context.Context) ([]domain.StockMovement, error)
	FindByProductID(ctx context.Context, productID uint) ([]domain.StockMovement, error)
}

type StockProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

// StockService owns the only code path allowed to mutate a product's stock
// counter. Every mutation is a ledger entry plus a counter adjustment applied
// atomically by the repository.
type StockService struct {
	repo        StockMovementRepository
	productRepo StockProductRepository
}

func NewStockService(repo StockMovementRepository, productRepo StockProductRepository) *StockService {
	return &StockService{
		repo:        repo,
		productRepo: productRepo,
	}
}

// auditNotes appends the caller identity to a movement's free-text note.
func auditNotes(notes string, actor domain.User) string {
	if actor.Email == "" {
		return notes
	}
	if notes == "" {
		return fmt.Sprintf("registered by %v", actor.Email)
	}
	return fmt.Sprintf("%v (registered by %v)", notes, actor.Email)
}

// ApplyMovement validates and records one stock movement, returning the
// created ledger entry and the product's new stock. An outbound quantity
// larger than the current stock is rejected without recording anything.
func (s *StockService) ApplyMovement(ctx context.Context, productID uint, movementType domain.MovementType, quantity int, notes string, actor domain.User) (domain.StockMovement, int, error) {
	if !movementType.IsValid() {
		return domain.StockMovement{}, 0, ErrInvalidMovementType
	}
	if quantity <= 0 {
		return domain.StockMovement{}, 0, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domain.StockMovement{}, 0, fmt.Errorf("s.productRepo.FindByID -> %w", err)
	}

	movement := domain.StockMovement{
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        movementType,
		Quantity:    quantity,
		Notes:       auditNotes(notes, actor),
	}

	created, newStock, err := s.repo.CreateApplied(ctx, movement)
	if err != nil {
		return domain.StockMovement{}, 0, fmt.Errorf("s.repo.CreateApplied -> %w", err)
	}

	return created, newStock, nil
}

// ReverseMovement records a compensating entry with the opposite direction and
// the same quantity, returning stock to its value before the original
// movement. The original row stays in the ledger untouched.
func (s *StockService) ReverseMovement(ctx context.Context, movementID uint, actor domain.User) (domain.StockMovement, int, error) {
	original, err := s.repo.FindByID(ctx, movementID)
	if err != nil {
		return domain.StockMovement{}, 0, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	notes := fmt.Sprintf("reversal of movement %v", original.ID)
	return s.ApplyMovement(ctx, original.ProductID, original.Type.Opposite(), original.Quantity, notes, actor)
}

// UpdateMovement corrects a historical entry. The repository expresses the
// correction as "undo old effect, apply new effect, persist row" in one
// transaction; if the undo would drive stock negative the whole correction is
// rejected and the row is left as it was.
func (s *StockService) UpdateMovement(ctx context.Context, movement domain.StockMovement, actor domain.User) (domain.StockMovement, error) {
	if !movement.Type.IsValid() {
		return domain.StockMovement{}, ErrInvalidMovementType
	}
	if movement.Quantity <= 0 {
		return domain.StockMovement{}, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, movement.ProductID)
	if err != nil {
		return domain.StockMovement{}, fmt.Errorf("s.productRepo.FindByID -> %w", err)
	}
	movement.ProductName = product.Name
	movement.Notes = auditNotes(movement.Notes, actor)

	updated, err := s.repo.UpdateApplied(ctx, movement)
	if err != nil {
		return domain.StockMovement{}, fmt.Errorf("s.repo.UpdateApplied -> %w", err)
	}

	return updated, nil
}

// DeleteMovement reverses the entry's effect on the counter and removes it
// from the ledger atomically.
func (s *StockService) DeleteMovement(ctx context.Context, movementID uint) error {
	if err := s.repo.DeleteApplied(ctx, movementID); err != nil {
		return fmt.Errorf("s.repo.DeleteApplied -> %w", err)
	}

	return nil
}

func (s *StockService) GetMovement(ctx context.Context, movementID uint) (domain.StockMovement, error) {
	movement, err := s.repo.FindByID(ctx, movementID)
	if err != nil {
		return domain.StockMovement{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return movement, nil
}

func (s *StockService) GetMovements(ctx context.Context) ([]domain.StockMovement, error) {
	movements, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return movements, nil
}

func (s *StockService) GetMovementsByProduct(ctx context.Context, productID uint) ([]domain.StockMovement, error) {
	movements, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByProductID -> %w", err)
	}

	return movements, nil
}
