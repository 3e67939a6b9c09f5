package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ProductView is the API shape of a product: images reduced to their URLs.
type ProductView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Stock       int       `json:"stock"`
	Sizes       []string  `json:"sizes"`
	Gender      string    `json:"gender"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) View() *ProductView {
	if p == nil {
		return nil
	}
	return &ProductView{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Slug:        p.Slug,
		Stock:       p.Stock,
		Sizes:       nonNil(p.Sizes),
		Gender:      p.Gender,
		Tags:        nonNil(p.Tags),
		Images:      p.ImageURLs(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

// ValidGender reports whether g is one of the catalog genders.
func ValidGender(g string) bool {
	switch g {
	case GenderMen, GenderWomen, GenderKid, GenderUnisex:
		return true
	default:
		return false
	}
}
