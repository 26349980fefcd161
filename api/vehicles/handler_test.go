package vehicles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/v2xlab/obu/core/model"
	"github.com/v2xlab/obu/core/route"
)

func TestStateHandler(t *testing.T) {
	vs := model.NewVehicleState(nil)
	vs.SetSpeed(42)
	vs.SetColor(model.ColorRed)
	h := NewStateHandler(vs)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/vehicle", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out model.VehicleSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Speed != 42 || out.Color != model.ColorRed || out.Active {
		t.Fatalf("unexpected output %#v", out)
	}
}

func TestStateHandler_MethodNotAllowed(t *testing.T) {
	h := NewStateHandler(model.NewVehicleState(nil))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/vehicle", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}

type fakeSession struct {
	active  bool
	session *route.SessionInfo
}

func (f fakeSession) Active() bool { return f.active }

func (f fakeSession) Session() (route.SessionInfo, bool) {
	if f.session == nil {
		return route.SessionInfo{}, false
	}
	return *f.session, true
}

func TestSessionHandler(t *testing.T) {
	cases := []struct {
		name string
		src  fakeSession
		want SessionStatus
	}{
		{"idle", fakeSession{}, SessionStatus{}},
		{"running", fakeSession{active: true, session: &route.SessionInfo{Name: "chula", Cursor: 3, Len: 16}},
			SessionStatus{Active: true, Route: "chula", Cursor: 3, Length: 16}},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		NewSessionHandler(tc.src).ServeHTTP(rr, httptest.NewRequest("GET", "/api/session", nil))
		var out SessionStatus
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if out != tc.want {
			t.Fatalf("%s: got %#v want %#v", tc.name, out, tc.want)
		}
	}
}
