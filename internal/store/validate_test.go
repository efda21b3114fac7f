package store

import (
	"strings"
	"testing"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     OrderRecord
		wantErr bool
	}{
		{"normal", OrderRecord{TradingSymbol: "INFY", Exchange: "NSE"}, false},
		{"missing_symbol", OrderRecord{Exchange: "NSE"}, true},
		{"max_symbol", OrderRecord{TradingSymbol: strings.Repeat("A", 64)}, false},
		{"symbol_too_long", OrderRecord{TradingSymbol: strings.Repeat("A", 65)}, true},
		{"field_too_long", OrderRecord{TradingSymbol: "INFY", Product: strings.Repeat("x", 33)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(&tt.rec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClipError(t *testing.T) {
	if got := ClipError("short"); got != "short" {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := ClipError(strings.Repeat("e", 2000)); len(got) != MaxErrorLength {
		t.Errorf("expected %d bytes, got %d", MaxErrorLength, len(got))
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultListLimit},
		{-3, DefaultListLimit},
		{10, 10},
		{10000, MaxListLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
