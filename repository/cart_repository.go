package repository

import (
	"context"
	"errors"

	"github.com/agromarket/backend/models"

	"gorm.io/gorm"
)

// gormCartBackend keeps authenticated users' carts in the relational store.
// Save replaces the full line set; the cart row is created on first use.
type gormCartBackend struct {
	db *gorm.DB
}

func NewGormCartBackend(db *gorm.DB) CartBackend {
	return &gormCartBackend{db: db}
}

func (b *gormCartBackend) Get(ctx context.Context, owner models.CartOwner) ([]models.CartEntry, error) {
	if owner.UserID == nil {
		return nil, nil
	}

	var cart models.Cart
	err := b.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", *owner.UserID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make([]models.CartEntry, 0, len(cart.Items))
	for _, item := range cart.Items {
		entries = append(entries, models.CartEntry{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return entries, nil
}

func (b *gormCartBackend) Save(ctx context.Context, owner models.CartOwner, entries []models.CartEntry) error {
	if owner.UserID == nil {
		return nil
	}

	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Where("user_id = ?", *owner.UserID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{UserID: *owner.UserID}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		items := make([]models.CartItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, models.CartItem{
				CartID:    cart.ID,
				ProductID: e.ProductID,
				Quantity:  e.Quantity,
			})
		}
		return tx.Create(&items).Error
	})
}

func (b *gormCartBackend) Clear(ctx context.Context, owner models.CartOwner) error {
	if owner.UserID == nil {
		return nil
	}

	var cart models.Cart
	err := b.db.WithContext(ctx).Where("user_id = ?", *owner.UserID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return b.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
}
