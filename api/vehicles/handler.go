package vehicles

import (
	"encoding/json"
	"net/http"

	"github.com/v2xlab/obu/core/model"
	"github.com/v2xlab/obu/core/route"
)

// StateSource provides the consumer side vehicle model.
type StateSource interface {
	Snapshot() model.VehicleSnapshot
}

// SessionSource provides the producer side activity flag and route session.
type SessionSource interface {
	Active() bool
	Session() (route.SessionInfo, bool)
}

// SessionStatus is the JSON body of the session endpoint. Route is empty
// when no route is selected.
type SessionStatus struct {
	Active bool   `json:"active"`
	Route  string `json:"route,omitempty"`
	Cursor int    `json:"cursor"`
	Length int    `json:"length"`
}

// NewStateHandler returns an HTTP handler exposing the vehicle state via
// GET /api/vehicle.
func NewStateHandler(src StateSource) http.Handler {
	return getJSON(func() any { return src.Snapshot() })
}

// NewSessionHandler returns an HTTP handler exposing the route session via
// GET /api/session.
func NewSessionHandler(src SessionSource) http.Handler {
	return getJSON(func() any {
		st := SessionStatus{Active: src.Active()}
		if s, ok := src.Session(); ok {
			st.Route, st.Cursor, st.Length = s.Name, s.Cursor, s.Len
		}
		return st
	})
}

func getJSON(body func() any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
