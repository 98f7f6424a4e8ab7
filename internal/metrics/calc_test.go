package metrics

import (
	"errors"
	"math"
	"testing"

	"tradingjournal/internal/domain"
)

func TestRiskReward(t *testing.T) {
	tests := []struct {
		name       string
		entry      float64
		stopLoss   float64
		takeProfit float64
		want       float64
		wantErr    bool
	}{
		{name: "long two to one", entry: 1.10, stopLoss: 1.095, takeProfit: 1.11, want: 2.0},
		{name: "short", entry: 1.25, stopLoss: 1.2550, takeProfit: 1.24, want: 2.0},
		{name: "sub one ratio", entry: 100, stopLoss: 90, takeProfit: 105, want: 0.5},
		{name: "stop equals entry", entry: 1.10, stopLoss: 1.10, takeProfit: 1.12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RiskReward(tt.entry, tt.stopLoss, tt.takeProfit)
			if tt.wantErr {
				if !errors.Is(err, ErrZeroRiskDistance) {
					t.Fatalf("expected ErrZeroRiskDistance, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RiskReward() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultPips(t *testing.T) {
	if got := ResultPips(domain.Buy, 1.10, 1.108); math.Abs(got-0.008) > 1e-9 {
		t.Errorf("buy result = %v, want 0.008", got)
	}
	if got := ResultPips(domain.Sell, 27000, 26500); got != 500 {
		t.Errorf("sell result = %v, want 500", got)
	}
	if got := ResultPips(domain.Buy, 1.10, 1.09); math.Abs(got+0.01) > 1e-9 {
		t.Errorf("losing buy result = %v, want -0.01", got)
	}
}

func TestResultUSD(t *testing.T) {
	if got := ResultUSD(0.008, 1); math.Abs(got-0.008) > 1e-9 {
		t.Errorf("ResultUSD = %v, want 0.008", got)
	}
	if got := ResultUSD(500, 0.5); got != 250 {
		t.Errorf("ResultUSD = %v, want 250", got)
	}
	if got := ResultUSD(-0.01, 1000); got != -10 {
		t.Errorf("ResultUSD = %v, want -10", got)
	}
}
