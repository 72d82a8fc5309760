package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"vaultadmin/internal/response"
	"vaultadmin/internal/services/audit"
)

func CreateAuditLog(svc *audit.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req audit.RecordInput
		if !decodeJSON(w, r, &req) {
			return
		}
		entry, err := svc.Record(r.Context(), req)
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusCreated, "Audit log created successfully", entry)
	}
}

func ListAuditLogs(svc *audit.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := svc.Query(r.Context(), audit.QueryParams{
			UserID:         q.Get("userId"),
			UserRole:       q.Get("userRole"),
			Method:         q.Get("method"),
			Endpoint:       q.Get("endpoint"),
			ResponseStatus: q.Get("responseStatus"),
			StartDate:      q.Get("startDate"),
			EndDate:        q.Get("endDate"),
			Page:           q.Get("page"),
			Limit:          q.Get("limit"),
		})
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Audit logs retrieved successfully", res)
	}
}

func AuditLogStats(svc *audit.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		response.Success(w, http.StatusOK, "Audit log statistics retrieved successfully", stats)
	}
}
