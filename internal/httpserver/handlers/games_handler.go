package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"vaultadmin/internal/response"
	"vaultadmin/internal/services/catalog"
)

func CreateGame(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.CreateGameInput
		if !decodeJSON(w, r, &req) {
			return
		}
		game, err := svc.Create(r.Context(), req)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusCreated, "Game created successfully", game)
	}
}

func ListGames(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := svc.List(r.Context(), catalog.ListParams{
			Page:      q.Get("page"),
			Limit:     q.Get("limit"),
			Search:    q.Get("search"),
			Genre:     q.Get("genre"),
			Platform:  q.Get("platform"),
			MinPrice:  q.Get("minPrice"),
			MaxPrice:  q.Get("maxPrice"),
			SortBy:    q.Get("sortBy"),
			SortOrder: q.Get("sortOrder"),
			Featured:  q.Get("featured"),
			OnSale:    q.Get("onSale"),
			IsActive:  q.Get("isActive"),
		})
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Games retrieved successfully", res)
	}
}

func GetGame(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Game retrieved successfully", game)
	}
}

func UpdateGame(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.UpdateGameInput
		if !decodeJSON(w, r, &req) {
			return
		}
		game, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Game updated successfully", game)
	}
}

func DeleteGame(svc *catalog.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Game deleted successfully", game)
	}
}
