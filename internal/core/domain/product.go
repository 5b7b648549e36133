package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url"`
	CreatedAt time.Time       `json:"created_at"`
}
