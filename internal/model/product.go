package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalogue entry together with its authoritative on-hand
// quantity. Quantity is the denormalised sum of active batch intakes and is
// what availability checks run against; batches carry provenance only.
type Product struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Price            decimal.Decimal `json:"price" db:"price"`
	Quantity         int             `json:"quantity" db:"quantity"`
	ReorderLevel     int             `json:"reorderLevel" db:"reorder_level"`
	ManufacturedDate time.Time       `json:"manufacturedDate" db:"manufactured_date"`
	ExpiryDate       time.Time       `json:"expiryDate" db:"expiry_date"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// BatchStatus classifies a batch by how close it is to expiry.
type BatchStatus string

const (
	BatchActive       BatchStatus = "Active"
	BatchExpiringSoon BatchStatus = "ExpiringSoon"
	BatchExpired      BatchStatus = "Expired"
)

// ProductBatch records a single intake of stock with its own purchase price
// and expiry window.
type ProductBatch struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ProductID        uuid.UUID       `json:"productId" db:"product_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	PurchasePrice    decimal.Decimal `json:"purchasePrice" db:"purchase_price"`
	ManufacturedDate time.Time       `json:"manufacturedDate" db:"manufactured_date"`
	ExpiryDate       time.Time       `json:"expiryDate" db:"expiry_date"`
	AddedAt          time.Time       `json:"addedAt" db:"added_at"`
}

// StatusAt derives the batch status relative to the given reference date.
// Expired once the expiry date has passed, ExpiringSoon within one month of
// it, Active otherwise. Never persisted.
func (b *ProductBatch) StatusAt(now time.Time) BatchStatus {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case b.ExpiryDate.Before(today):
		return BatchExpired
	case b.ExpiryDate.Before(today.AddDate(0, 1, 0)):
		return BatchExpiringSoon
	default:
		return BatchActive
	}
}

// Location is a fulfilment location with its delivery fee.
type Location struct {
	ID   uuid.UUID       `json:"id" db:"id"`
	Name string          `json:"name" db:"name"`
	Fee  decimal.Decimal `json:"fee" db:"fee"`
}

// User is the minimal identity slice the core needs: who to fan
// notifications out to.
type User struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	IsAdmin bool      `json:"isAdmin" db:"is_admin"`
}

// BatchView pairs a batch with its derived status for read endpoints.
type BatchView struct {
	ProductBatch
	Status BatchStatus `json:"status"`
}
