package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkuznec/pizza_orders/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

type OrderService struct {
	DB *gorm.DB
}

func validateOrderFields(size, flavour string, quantity int) (models.Size, error) {
	parsed, err := models.ParseSize(size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if flavour == "" {
		return "", fmt.Errorf("%w: flavour required", ErrValidation)
	}
	if quantity < 1 {
		return "", fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}
	return parsed, nil
}

// Create places an order for the user behind the given username. The caller
// identity comes from a verified token, so an unknown username is treated
// as a stale credential rather than a plain missing row.
func (s *OrderService) Create(ctx context.Context, username, size, flavour string, quantity int) (*models.Order, error) {
	parsedSize, err := validateOrderFields(size, flavour, quantity)
	if err != nil {
		return nil, err
	}

	var owner models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, username)
		}
		return nil, err
	}

	order := &models.Order{
		Size:        parsedSize,
		Flavour:     flavour,
		Quantity:    quantity,
		OrderStatus: models.StatusPending,
		UserID:      owner.ID,
	}
	if err := s.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

// Update overwrites the three mutable fields. Ownership and status are
// never touched here.
func (s *OrderService) Update(ctx context.Context, id uint, size, flavour string, quantity int) (*models.Order, error) {
	parsedSize, err := validateOrderFields(size, flavour, quantity)
	if err != nil {
		return nil, err
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Size = parsedSize
	order.Flavour = flavour
	order.Quantity = quantity
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (s *OrderService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d for user %d", ErrNotFound, orderID, userID)
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus validates the new status against the enum before touching
// the row, so an invalid value leaves the stored status unchanged.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.OrderStatus = parsed
	if err := s.DB.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}
