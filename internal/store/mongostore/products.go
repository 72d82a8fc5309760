package mongostore

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
)

var productSortFields = map[store.ProductSort]string{
	store.SortCreatedAt:   "createdAt",
	store.SortPrice:       "price",
	store.SortReleaseDate: "releaseDate",
	store.SortRating:      "averageRating",
	store.SortName:        "name",
}

func productFilter(f store.ProductFilter) bson.D {
	d := bson.D{}
	if f.IsActive != nil {
		d = append(d, bson.E{Key: "isActive", Value: *f.IsActive})
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		d = append(d, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "developer", Value: re}},
			bson.D{{Key: "publisher", Value: re}},
		}})
	}
	if f.Genre != "" {
		d = append(d, bson.E{Key: "genres", Value: f.Genre})
	}
	if f.Platform != "" {
		d = append(d, bson.E{Key: "platform", Value: f.Platform})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		r := bson.D{}
		if f.MinPrice != nil {
			r = append(r, bson.E{Key: "$gte", Value: *f.MinPrice})
		}
		if f.MaxPrice != nil {
			r = append(r, bson.E{Key: "$lte", Value: *f.MaxPrice})
		}
		d = append(d, bson.E{Key: "price", Value: r})
	}
	if f.Featured {
		d = append(d, bson.E{Key: "isFeatured", Value: true})
	}
	if f.OnSale {
		d = append(d,
			bson.E{Key: "discountPrice", Value: bson.D{{Key: "$ne", Value: nil}}},
			bson.E{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$discountPrice", "$price"}}}},
		)
	}
	return d
}

func productSort(f store.ProductFilter) bson.D {
	field, ok := productSortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := -1
	if f.Asc {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.db.Collection(colProducts).InsertOne(ctx, p)
	return translate(err)
}

func (s *Store) findProduct(ctx context.Context, filter bson.M) (*models.Product, error) {
	var p models.Product
	if err := s.db.Collection(colProducts).FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.findProduct(ctx, bson.M{"_id": idMatch(id)})
}

func (s *Store) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.findProduct(ctx, bson.M{"slug": slug})
}

func (s *Store) FindProducts(ctx context.Context, f store.ProductFilter, p store.Page) ([]models.Product, int64, error) {
	col := s.db.Collection(colProducts)
	filter := productFilter(f)
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}
	cur, err := col.Find(ctx, filter, findOptions(p, productSort(f)))
	if err != nil {
		return nil, 0, translate(err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	doc, err := withoutID(p)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(colProducts).ReplaceOne(ctx, bson.M{"_id": idMatch(p.ID)}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
