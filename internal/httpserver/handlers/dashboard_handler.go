package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"vaultadmin/internal/response"
	"vaultadmin/internal/services/dashboard"
)

func DashboardStats(svc *dashboard.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Dashboard statistics retrieved successfully", stats)
	}
}
