package response

import (
	"encoding/json"
	"net/http"
)

const (
	MsgParseFailed    = "Request parsing failed or request was aborted"
	MsgInternalServer = "Internal server error"
)

// Envelope is the body of every response the service sends.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env)
}

func Success(w http.ResponseWriter, status int, msg string, data interface{}) {
	JSON(w, status, Envelope{Success: true, Message: msg, Data: data})
}

func SuccessWithMeta(w http.ResponseWriter, status int, msg string, data, meta interface{}) {
	JSON(w, status, Envelope{Success: true, Message: msg, Data: data, Meta: meta})
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Message: msg})
}
