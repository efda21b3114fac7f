package protocol

import (
	"encoding/json"
	"testing"
)

func TestNewEvent(t *testing.T) {
	f := NewEvent(EventLTP, LTPPayload{Instruments: []string{"NSE:INFY"}})
	if f.Type != FrameTypeEvent || f.Event != EventLTP {
		t.Errorf("unexpected frame header %+v", f)
	}
	if f.TS == 0 {
		t.Error("expected timestamp")
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "event" || m["event"] != "ltp" {
		t.Errorf("unexpected wire frame %s", data)
	}
	if _, ok := m["seq"]; ok {
		t.Error("zero seq should be omitted")
	}
}

func TestErrorBody(t *testing.T) {
	data, _ := json.Marshal(ErrorBody{Error: NewError(ErrValidation, "quantity must be greater than 0")})
	want := `{"error":{"code":"VALIDATION_FAILED","message":"quantity must be greater than 0"}}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
