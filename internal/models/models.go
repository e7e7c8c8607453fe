package models

import "fmt"

type Size string

const (
	SizeSmall      Size = "SMALL"
	SizeMedium     Size = "MEDIUM"
	SizeLarge      Size = "LARGE"
	SizeExtraLarge Size = "EXTRA_LARGE"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusInTransit OrderStatus = "IN_TRANSIT"
	StatusDelivered OrderStatus = "DELIVERED"
)

func ParseSize(s string) (Size, error) {
	switch Size(s) {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return Size(s), nil
	}
	return "", fmt.Errorf("unknown size %q", s)
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusInTransit, StatusDelivered:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsActive     bool   `gorm:"default:true"             json:"is_active"`
	IsStaff      bool   `gorm:"default:false"            json:"is_staff"`
}

type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"  json:"id"`
	Size        Size        `gorm:"not null"                  json:"size"`
	Flavour     string      `gorm:"not null"                  json:"flavour"`
	Quantity    int         `gorm:"not null;check:quantity>0" json:"quantity"`
	OrderStatus OrderStatus `gorm:"not null;default:PENDING"  json:"order_status"`
	UserID      uint        `gorm:"index;not null"            json:"user_id"`
}
