package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/db/models"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository is the SQL backed Store.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: utcNow}
}

func (r *Repository) Push(ctx context.Context, order Order) (Order, error) {
	order.ID = newOrderID()
	order.OrderDate = r.now()
	order.DeliveryDate = nil
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	model := toModel(order)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return fromModel(model), nil
}

func (r *Repository) Patch(ctx context.Context, id string, status enums.OrderStatus) (Order, error) {
	var patched models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": status}
		if status == enums.OrderStatusDelivered {
			updates["delivery_date"] = r.now()
		}
		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&patched, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return fromModel(patched), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{}).Error; err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// List returns the whole collection, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).Order("order_date DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func toModel(o Order) models.Order {
	return models.Order{
		ID:           o.ID,
		UserID:       o.UserID,
		DoorID:       o.DoorID,
		DoorName:     o.DoorName,
		DoorImage:    o.DoorImage,
		DoorCategory: o.DoorCategory,
		Price:        o.Price,
		Width:        o.Width,
		Height:       o.Height,
		Thickness:    o.Thickness,
		Name:         o.Name,
		Address:      o.Address,
		PhoneNumber:  o.PhoneNumber,
		Pincode:      o.Pincode,
		State:        o.State,
		Status:       o.Status,
		OrderDate:    o.OrderDate,
		DeliveryDate: o.DeliveryDate,
	}
}

func fromModel(m models.Order) Order {
	var delivered *time.Time
	if m.DeliveryDate != nil {
		at := m.DeliveryDate.UTC()
		delivered = &at
	}
	return Order{
		ID:           m.ID,
		UserID:       m.UserID,
		DoorID:       m.DoorID,
		DoorName:     m.DoorName,
		DoorImage:    m.DoorImage,
		DoorCategory: m.DoorCategory,
		Price:        m.Price,
		Width:        m.Width,
		Height:       m.Height,
		Thickness:    m.Thickness,
		Name:         m.Name,
		Address:      m.Address,
		PhoneNumber:  m.PhoneNumber,
		Pincode:      m.Pincode,
		State:        m.State,
		Status:       m.Status,
		OrderDate:    m.OrderDate.UTC(),
		DeliveryDate: delivered,
	}
}
