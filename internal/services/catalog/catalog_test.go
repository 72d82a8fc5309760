package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vaultadmin/internal/apperr"
	"vaultadmin/internal/models"
	"vaultadmin/internal/store"
	"vaultadmin/internal/store/gormstore"
)

func newService(t *testing.T) *Service {
	t.Helper()
	st, err := gormstore.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, zap.NewNop().Sugar())
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func game(name string, price float64) CreateGameInput {
	return CreateGameInput{
		Name:        name,
		Description: name + " is a game",
		Price:       &price,
		ReleaseDate: "2020-09-17",
		Developer:   "Supergiant Games",
		Publisher:   "Supergiant Games",
	}
}

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, kind, e.Kind)
	if msg != "" {
		assert.Equal(t, msg, e.Message)
	}
}

func TestCreate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	in := game("The Witcher 3: Wild Hunt", 40)
	in.DiscountPrice = f64(30)
	in.Genres = []string{"RPG"}
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "the-witcher-3-wild-hunt", p.Slug)
	assert.Equal(t, 25.0, p.DiscountPercentage)
	assert.Equal(t, models.DefaultAgeRating, p.AgeRating)
	assert.True(t, p.IsActive)
	assert.Equal(t, models.UnlimitedStock, p.Stock)
	assert.Equal(t, 2020, p.ReleaseDate.Year())
	assert.NotNil(t, p.Tags)

	_, err = svc.Create(ctx, game("the witcher 3  wild hunt", 10))
	requireKind(t, err, apperr.KindConflict, "Game with this name already exists")

	custom := game("Hades", 25)
	custom.Slug = "  Hades-GOTY "
	inactive := false
	custom.IsActive = &inactive
	p, err = svc.Create(ctx, custom)
	require.NoError(t, err)
	assert.Equal(t, "hades-goty", p.Slug)
	assert.False(t, p.IsActive)

	free := game("Free Thing", 0)
	free.DiscountPrice = f64(0)
	p, err = svc.Create(ctx, free)
	require.NoError(t, err)
	assert.Zero(t, p.DiscountPercentage)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := map[string]func(*CreateGameInput){
		"missing price":   func(in *CreateGameInput) { in.Price = nil },
		"negative price":  func(in *CreateGameInput) { in.Price = f64(-1) },
		"missing name":    func(in *CreateGameInput) { in.Name = "   " },
		"bad platform":    func(in *CreateGameInput) { in.Platform = []string{"Windows", "Amiga"} },
		"bad age rating":  func(in *CreateGameInput) { in.AgeRating = "X" },
		"bad image url":   func(in *CreateGameInput) { in.Images = []string{"not a url"} },
		"long short desc": func(in *CreateGameInput) { in.ShortDescription = strings.Repeat("a", 201) },
		"bad release":     func(in *CreateGameInput) { in.ReleaseDate = "someday" },
		"pct over 100":    func(in *CreateGameInput) { in.DiscountPercentage = f64(101) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := game("Celeste", 20)
			mutate(&in)
			_, err := svc.Create(ctx, in)
			requireKind(t, err, apperr.KindInvalid, "")
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "64b7f0c2a1e3")
	requireKind(t, err, apperr.KindInvalid, "Game ID format not matched")
	_, err = svc.Get(ctx, uuid.NewString())
	requireKind(t, err, apperr.KindNotFound, "Game not found")
	_, err = svc.Get(ctx, "64b7f0c2a1e3d4f5a6b7c8d9")
	requireKind(t, err, apperr.KindNotFound, "Game not found")
	_, err = svc.Delete(ctx, uuid.NewString())
	requireKind(t, err, apperr.KindNotFound, "Game not found")

	p, err := svc.Create(ctx, game("Celeste", 20))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Celeste", got.Name)
}

func TestUpdate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	in := game("Hollow Knight", 15)
	in.DiscountPrice = f64(12)
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)
	other, err := svc.Create(ctx, game("Celeste", 20))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "nope", UpdateGameInput{})
	requireKind(t, err, apperr.KindInvalid, "Game ID format not matched")
	_, err = svc.Update(ctx, uuid.NewString(), UpdateGameInput{})
	requireKind(t, err, apperr.KindNotFound, "Game not found")

	_, err = svc.Update(ctx, p.ID, UpdateGameInput{Name: str("Celeste")})
	requireKind(t, err, apperr.KindConflict, "Game with this slug already exists")
	_, err = svc.Update(ctx, p.ID, UpdateGameInput{Slug: str(other.Slug)})
	requireKind(t, err, apperr.KindConflict, "Game with this slug already exists")

	up, err := svc.Update(ctx, p.ID, UpdateGameInput{Name: str("Hollow Knight: Silksong"), Price: f64(30)})
	require.NoError(t, err)
	assert.Equal(t, "hollow-knight-silksong", up.Slug)
	assert.Equal(t, 60.0, up.DiscountPercentage)

	var clear UpdateGameInput
	require.NoError(t, json.Unmarshal([]byte(`{"discountPrice": null, "isFeatured": true}`), &clear))
	assert.True(t, clear.DiscountPrice.Set)
	up, err = svc.Update(ctx, p.ID, clear)
	require.NoError(t, err)
	assert.Nil(t, up.DiscountPrice)
	assert.Zero(t, up.DiscountPercentage)
	assert.True(t, up.IsFeatured)
	assert.Equal(t, "hollow-knight-silksong", up.Slug, "slug untouched without a name change")

	up, err = svc.Update(ctx, p.ID, UpdateGameInput{Slug: str("HK-Silksong"), ReleaseDate: str("2025-09-04T00:00:00Z")})
	require.NoError(t, err)
	assert.Equal(t, "hk-silksong", up.Slug)
	assert.Equal(t, 2025, up.ReleaseDate.Year())

	_, err = svc.Update(ctx, p.ID, UpdateGameInput{Name: str("")})
	requireKind(t, err, apperr.KindInvalid, "")
	_, err = svc.Update(ctx, p.ID, UpdateGameInput{DiscountPrice: NullableFloat{Set: true, Value: f64(-2)}})
	requireKind(t, err, apperr.KindInvalid, "")

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hollow Knight: Silksong", got.Name)
	assert.Equal(t, 30.0, got.Price)
}

func TestNullableFloat(t *testing.T) {
	var in UpdateGameInput
	require.NoError(t, json.Unmarshal([]byte(`{"price": 3}`), &in))
	assert.False(t, in.DiscountPrice.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"discountPrice": 2.5}`), &in))
	assert.True(t, in.DiscountPrice.Set)
	assert.Equal(t, 2.5, *in.DiscountPrice.Value)
}

func TestList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i, name := range []string{"Alpha", "Beta", "Gamma"} {
		in := game(name, float64(10*(i+1)))
		in.Platform = []string{"Windows"}
		if name == "Beta" {
			in.DiscountPrice = f64(5)
			in.Platform = []string{"Linux"}
		}
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Pagination.TotalGames)
	assert.Equal(t, DefaultLimit, res.Pagination.Limit)
	assert.Equal(t, 1, res.Pagination.TotalPages)

	res, err = svc.List(ctx, ListParams{SortBy: "price", SortOrder: "asc", Limit: "2", Page: "2"})
	require.NoError(t, err)
	require.Len(t, res.Games, 1)
	assert.Equal(t, "Gamma", res.Games[0].Name)
	assert.Equal(t, 2, res.Pagination.TotalPages)

	res, err = svc.List(ctx, ListParams{OnSale: "true"})
	require.NoError(t, err)
	require.Len(t, res.Games, 1)
	assert.Equal(t, "Beta", res.Games[0].Name)

	res, err = svc.List(ctx, ListParams{Platform: "Windows", MaxPrice: "15"})
	require.NoError(t, err)
	require.Len(t, res.Games, 1)
	assert.Equal(t, "Alpha", res.Games[0].Name)

	res, err = svc.List(ctx, ListParams{IsActive: "false"})
	require.NoError(t, err)
	assert.Empty(t, res.Games)
	assert.NotNil(t, res.Games)

	_, err = svc.List(ctx, ListParams{MinPrice: "cheap"})
	requireKind(t, err, apperr.KindBadRequest, "minPrice must be a number")
}

func TestListOversizedPage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, game("Celeste", 20))
	require.NoError(t, err)

	res, err := svc.List(ctx, ListParams{Page: "9223372036854775807"})
	require.NoError(t, err)
	assert.Equal(t, store.MaxPageNumber, res.Pagination.CurrentPage)
	assert.EqualValues(t, 1, res.Pagination.TotalGames)
	assert.Empty(t, res.Games)
}
