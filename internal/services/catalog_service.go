package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fashionstore/internal/domain"
	"fashionstore/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) List() ([]domain.Product, error) {
	return s.Prods.List()
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

// ProductInput is the admin-facing shape for creating catalog entries.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
}

func (s *CatalogService) Create(in ProductInput) (domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Product{}, domain.Validation("missing product name")
	}
	if in.Price.IsNegative() {
		return domain.Product{}, domain.Validation("price must not be negative")
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.Validation("stock must not be negative")
	}
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		Stock:       in.Stock,
		Size:        in.Size,
		Color:       in.Color,
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) Update(id string, upd repos.ProductUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return domain.Validation("product name must not be empty")
	}
	if upd.Price != nil && upd.Price.IsNegative() {
		return domain.Validation("price must not be negative")
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return domain.Validation("stock must not be negative")
	}
	return s.Prods.Update(id, upd)
}
