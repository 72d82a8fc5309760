package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"vaultadmin/internal/models"
	"vaultadmin/internal/response"
	"vaultadmin/internal/services/account"
)

type loginMeta struct {
	Token string `json:"token"`
}

func Login(svc *account.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req account.LoginInput
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := svc.Login(r.Context(), req)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.SuccessWithMeta(w, http.StatusOK, "Login Successfull", res.User, loginMeta{Token: res.Token})
	}
}

type logoutReq struct {
	UserID string `json:"userId"`
}

func Logout(svc *account.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logoutReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.Logout(r.Context(), req.UserID); err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "User logged out successfully", nil)
	}
}

func LoginHistory(svc *account.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.LoginHistory(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		if view == nil {
			response.Success(w, http.StatusOK, "No login history found",
				map[string]interface{}{"loginDetails": []models.LoginEvent{}})
			return
		}
		response.Success(w, http.StatusOK, "Login history retrieved successfully", view)
	}
}

func ChangePassword(svc *account.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req account.ChangePasswordInput
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.ChangePassword(r.Context(), chi.URLParam(r, "userId"), req); err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Password updated successfully", nil)
	}
}
