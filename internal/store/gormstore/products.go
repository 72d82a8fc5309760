package gormstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
)

var productSortColumns = map[store.ProductSort]string{
	store.SortCreatedAt:   "created_at",
	store.SortPrice:       "price",
	store.SortReleaseDate: "release_date",
	store.SortRating:      "average_rating",
	store.SortName:        "name",
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Store) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// jsonContains matches rows whose JSON string array col holds v.
func (s *Store) jsonContains(q *gorm.DB, col, v string) *gorm.DB {
	if s.isPostgres() {
		return q.Where(col+" @> jsonb_build_array(?::text)", v)
	}
	return q.Where("EXISTS (SELECT 1 FROM json_each(products."+col+") WHERE json_each.value = ?)", v)
}

func (s *Store) productQuery(ctx context.Context, f store.ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		term := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(developer) LIKE ? ESCAPE '\' OR LOWER(publisher) LIKE ? ESCAPE '\')`,
			term, term, term, term)
	}
	if f.Genre != "" {
		q = s.jsonContains(q, "genres", f.Genre)
	}
	if f.Platform != "" {
		q = s.jsonContains(q, "platform", f.Platform)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Featured {
		q = q.Where("is_featured = ?", true)
	}
	if f.OnSale {
		q = q.Where("discount_price IS NOT NULL AND discount_price < price")
	}
	return q
}

func (s *Store) FindProducts(ctx context.Context, f store.ProductFilter, p store.Page) ([]models.Product, int64, error) {
	var total int64
	if err := s.productQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	col, ok := productSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := " DESC"
	if f.Asc {
		dir = " ASC"
	}
	var products []models.Product
	err := s.productQuery(ctx, f).
		Order(col + dir).Order("id" + dir).
		Offset(p.Offset()).Limit(p.Size).
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return products, total, nil
}

// SaveProduct writes every column of p, which must already exist.
func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	res := s.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
