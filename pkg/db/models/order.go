package models

import (
	"time"

	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is one door placed by a customer. user_id is empty for guest orders.
type Order struct {
	ID           string            `gorm:"column:id;type:text;primaryKey"`
	UserID       string            `gorm:"column:user_id;type:text;not null;default:'';index"`
	DoorID       string            `gorm:"column:door_id;type:text;not null"`
	DoorName     string            `gorm:"column:door_name;type:text;not null"`
	DoorImage    string            `gorm:"column:door_image;type:text;not null;default:''"`
	DoorCategory string            `gorm:"column:door_category;type:text;not null;default:''"`
	Price        decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Width        string            `gorm:"column:width;type:text;not null"`
	Height       string            `gorm:"column:height;type:text;not null"`
	Thickness    string            `gorm:"column:thickness;type:text;not null"`
	Name         string            `gorm:"column:name;type:text;not null"`
	Address      string            `gorm:"column:address;type:text;not null"`
	PhoneNumber  string            `gorm:"column:phone_number;type:text;not null"`
	Pincode      string            `gorm:"column:pincode;type:text;not null"`
	State        string            `gorm:"column:state;type:text;not null"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	OrderDate    time.Time         `gorm:"column:order_date;not null;index"`
	DeliveryDate *time.Time        `gorm:"column:delivery_date"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
