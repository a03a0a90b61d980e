package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "123.45", want: "123.45"},
		{in: " 100 ", want: "100.00"},
		{in: "0.5", want: "0.50"},
		{in: "-12.30", want: "-12.30"},
		{in: "0", want: "0.00"},
		{in: "12.345", wantErr: true},
		{in: "0.001", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			if tt.wantErr {
				if err != ErrMalformedAmount {
					t.Fatalf("err = %v; want ErrMalformedAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tt.in, err)
			}
			if got := FormatAmount(d); got != tt.want {
				t.Errorf("FormatAmount = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAmountFromMinorUnits(t *testing.T) {
	if got := FormatAmount(AmountFromMinorUnits(12345)); got != "123.45" {
		t.Errorf("got %q; want 123.45", got)
	}
	if got := FormatAmount(AmountFromMinorUnits(5)); got != "0.05" {
		t.Errorf("got %q; want 0.05", got)
	}
}

func TestMoneyRound(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.005", "1.01"}, // half rounds up
		{"1.004", "1.00"},
		{"1.995", "2.00"},
		{"-1.005", "-1.01"},
		{"2.00", "2.00"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("parsing %q: %v", tt.in, err)
		}
		if got := FormatAmount(MoneyRound(d)); got != tt.want {
			t.Errorf("MoneyRound(%s) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
