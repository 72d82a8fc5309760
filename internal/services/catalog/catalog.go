// Package catalog manages the game catalog offered by the storefront.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultadmin/internal/apperr"
	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
	"vaultadmin/internal/util"
	"vaultadmin/internal/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

var (
	errBadID    = apperr.Invalid("Game ID format not matched")
	errNotFound = apperr.NotFound("Game not found")
)

type Service struct {
	store store.Products
	lg    *zap.SugaredLogger
}

func NewService(st store.Products, lg *zap.SugaredLogger) *Service {
	return &Service{store: st, lg: lg}
}

// checkID accepts our UUIDs and the ObjectId hex of products created elsewhere on the platform.
func checkID(id string) error {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err == nil || validation.Var(id, "mongodb") {
		return nil
	}
	return errBadID
}

func parseRelease(s string) (time.Time, error) {
	t, _, err := util.ParseDate(s)
	if err != nil {
		return time.Time{}, apperr.Invalid("The field 'releaseDate' must be a valid date.")
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, in CreateGameInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Developer = strings.TrimSpace(in.Developer)
	in.Publisher = strings.TrimSpace(in.Publisher)
	if err := validation.Struct(&in); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	release, err := parseRelease(in.ReleaseDate)
	if err != nil {
		return nil, err
	}

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = util.Slugify(in.Name)
	}
	if slug == "" {
		return nil, apperr.Invalid("The field 'slug' is required.")
	}
	if _, err := s.store.FindProductBySlug(ctx, slug); err == nil {
		return nil, apperr.Conflict("Game with this name already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p := &models.Product{
		Name:             in.Name,
		Slug:             slug,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Price:            *in.Price,
		DiscountPrice:    in.DiscountPrice,
		ReleaseDate:      release,
		Developer:        in.Developer,
		Publisher:        in.Publisher,
		Genres:           orEmpty(in.Genres),
		Tags:             orEmpty(in.Tags),
		Images:           orEmpty(in.Images),
		Videos:           orEmpty(in.Videos),
		Screenshots:      orEmpty(in.Screenshots),
		Languages:        orEmpty(in.Languages),
		AgeRating:        in.AgeRating,
		Platform:         orEmpty(in.Platform),
		DownloadSize:     in.DownloadSize,
		IsActive:         true,
		Stock:            models.UnlimitedStock,
	}
	if p.AgeRating == "" {
		p.AgeRating = models.DefaultAgeRating
	}
	if in.SystemRequirements != nil {
		p.SystemRequirements = *in.SystemRequirements
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.DiscountPercentage != nil {
		p.DiscountPercentage = *in.DiscountPercentage
	}
	if in.DiscountPrice != nil {
		p.DiscountPercentage = discountPercentage(p.Price, *in.DiscountPrice)
	}

	if err := s.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Game with this name already exists")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.lg.Infow("game created", "id", p.ID, "slug", p.Slug)
	return p, nil
}

// ListParams are the raw query-string values of a catalog listing.
type ListParams struct {
	Page      string
	Limit     string
	Search    string
	Genre     string
	Platform  string
	MinPrice  string
	MaxPrice  string
	SortBy    string
	SortOrder string
	Featured  string
	OnSale    string
	IsActive  string
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalGames  int64 `json:"totalGames"`
	Limit       int   `json:"limit"`
}

type ListResult struct {
	Games      []models.Product `json:"games"`
	Pagination Pagination       `json:"pagination"`
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parsePrice(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.BadRequest(name + " must be a number")
	}
	return &f, nil
}

func (q ListParams) filter() (store.ProductFilter, error) {
	f := store.ProductFilter{
		Search:   strings.TrimSpace(q.Search),
		Genre:    strings.TrimSpace(q.Genre),
		Platform: strings.TrimSpace(q.Platform),
		Featured: q.Featured == "true",
		OnSale:   q.OnSale == "true",
		SortBy:   store.ProductSort(q.SortBy),
		Asc:      q.SortOrder == "asc",
	}
	var err error
	if f.MinPrice, err = parsePrice("minPrice", q.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice("maxPrice", q.MaxPrice); err != nil {
		return f, err
	}
	if q.IsActive != "" {
		active := q.IsActive == "true"
		f.IsActive = &active
	}
	return f, nil
}

func (s *Service) List(ctx context.Context, q ListParams) (*ListResult, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	page := store.NewPage(positiveOr(q.Page, DefaultPage), positiveOr(q.Limit, DefaultLimit))
	games, total, err := s.store.FindProducts(ctx, f, page)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if games == nil {
		games = []models.Product{}
	}
	return &ListResult{
		Games: games,
		Pagination: Pagination{
			CurrentPage: page.Number,
			TotalPages:  page.TotalPages(total),
			TotalGames:  total,
			Limit:       page.Size,
		},
	}, nil
}

func (s *Service) find(ctx context.Context, id string) (*models.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p, err := s.store.FindProductByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	return p, err
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.find(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateGameInput) (*models.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := validation.Struct(&in); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	if in.DiscountPrice.Value != nil && *in.DiscountPrice.Value < 0 {
		return nil, apperr.Invalid("The field 'discountPrice' must be greater than or equal to 0.")
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := ""
	switch {
	case in.Slug != nil && strings.TrimSpace(*in.Slug) != "":
		slug = strings.ToLower(strings.TrimSpace(*in.Slug))
	case in.Name != nil:
		slug = util.Slugify(*in.Name)
	}
	if slug != "" {
		other, err := s.store.FindProductBySlug(ctx, slug)
		switch {
		case err == nil && other.ID != p.ID:
			return nil, apperr.Conflict("Game with this slug already exists")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		p.Slug = slug
	}

	if err := apply(p, in); err != nil {
		return nil, err
	}
	if in.Price != nil || in.DiscountPrice.Set {
		switch {
		case p.DiscountPrice == nil:
			p.DiscountPercentage = 0
		case p.Price > 0:
			p.DiscountPercentage = discountPercentage(p.Price, *p.DiscountPrice)
		}
	}

	if err := s.store.SaveProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Game with this slug already exists")
		}
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func apply(p *models.Product, in UpdateGameInput) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ShortDescription != nil {
		p.ShortDescription = *in.ShortDescription
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.DiscountPrice.Set {
		p.DiscountPrice = in.DiscountPrice.Value
	}
	if in.DiscountPercentage != nil {
		p.DiscountPercentage = *in.DiscountPercentage
	}
	if in.ReleaseDate != nil {
		release, err := parseRelease(*in.ReleaseDate)
		if err != nil {
			return err
		}
		p.ReleaseDate = release
	}
	if in.Developer != nil {
		p.Developer = strings.TrimSpace(*in.Developer)
	}
	if in.Publisher != nil {
		p.Publisher = strings.TrimSpace(*in.Publisher)
	}
	if in.Genres != nil {
		p.Genres = in.Genres
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Videos != nil {
		p.Videos = in.Videos
	}
	if in.Screenshots != nil {
		p.Screenshots = in.Screenshots
	}
	if in.SystemRequirements != nil {
		p.SystemRequirements = *in.SystemRequirements
	}
	if in.Languages != nil {
		p.Languages = in.Languages
	}
	if in.AgeRating != nil {
		p.AgeRating = *in.AgeRating
	}
	if in.Platform != nil {
		p.Platform = in.Platform
	}
	if in.DownloadSize != nil {
		p.DownloadSize = *in.DownloadSize
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	return nil
}

// Delete deactivates the game; the record is kept.
func (s *Service) Delete(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsActive = false
	if err := s.store.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("deactivate product: %w", err)
	}
	s.lg.Infow("game deactivated", "id", p.ID)
	return p, nil
}
