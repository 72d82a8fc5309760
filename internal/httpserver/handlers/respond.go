package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"vaultadmin/internal/apperr"
	"vaultadmin/internal/response"
)

const maxBodyBytes = 10 << 20

// decodeJSON reads a JSON body of at most 10 MB into dst. On failure it has
// already written the 400 envelope and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, response.MsgParseFailed)
		return false
	}
	return true
}

// respondError writes the envelope for err. Errors without a kind are logged and
// reported as a generic 500.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok {
		response.Error(w, apperr.Status(err), e.Message)
		return
	}
	lg.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	response.Error(w, http.StatusInternalServerError, response.MsgInternalServer)
}
