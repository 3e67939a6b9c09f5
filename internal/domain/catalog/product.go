package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GenderMen    = "men"
	GenderWomen  = "women"
	GenderKid    = "kid"
	GenderUnisex = "unisex"
)

type Product struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                      `gorm:"column:title;type:text;not null;uniqueIndex" json:"title"`
	Price       float64                     `gorm:"column:price;not null;default:0" json:"price"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Slug        string                      `gorm:"column:slug;type:text;not null;uniqueIndex" json:"slug"`
	Stock       int                         `gorm:"column:stock;not null;default:0" json:"stock"`
	Sizes       datatypes.JSONSlice[string] `gorm:"column:sizes" json:"sizes"`
	Gender      string                      `gorm:"column:gender;type:text;not null" json:"gender"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Images      []ProductImage              `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

// BeforeCreate assigns the id in Go so sqlite and postgres behave the same.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the slug normalized on every insert and update and
// refuses to store an empty one, since slug is unique.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = p.Title
	}
	p.Slug = NormalizeSlug(p.Slug)
	if p.Slug == "" {
		return ErrEmptySlug
	}
	if p.Sizes == nil {
		p.Sizes = datatypes.JSONSlice[string]{}
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
}

func (ProductImage) TableName() string { return "product_image" }

// NewImages builds unsaved image rows, preserving order.
func NewImages(urls []string) []ProductImage {
	out := make([]ProductImage, 0, len(urls))
	for _, u := range urls {
		out = append(out, ProductImage{URL: u})
	}
	return out
}

// ImageURLs flattens the image relation to plain URLs.
func (p *Product) ImageURLs() []string {
	out := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		out = append(out, img.URL)
	}
	return out
}
