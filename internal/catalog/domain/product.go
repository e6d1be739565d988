package domain

import "time"

type Product struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	Price                float64   `json:"price"`
	StockQuantity        int32     `json:"stock_quantity"`
	RequiresPrescription bool      `json:"requires_prescription"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Banner is a promotional banner shown on the storefront, ordered by
// Position within the active set.
type Banner struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	TargetURL string `json:"target_url"`
	Position  int32  `json:"position"`
	Active    bool   `json:"active"`
}
