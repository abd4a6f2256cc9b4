package core

import "testing"

func TestStock_Closes(t *testing.T) {
	stock := Stock{
		Symbol:      "ABC",
		ListingDate: "2015-01-01",
		History: []Candle{
			{Date: "2015-01-02", Close: 1.5},
			{Date: "2015-01-03", Close: 1.6},
			{Date: "2015-01-04", Close: 1.55},
		},
	}

	closes := stock.Closes()
	want := []float64{1.5, 1.6, 1.55}
	if len(closes) != len(want) {
		t.Fatalf("Closes() length = %d, want %d", len(closes), len(want))
	}
	for i := range want {
		if closes[i] != want[i] {
			t.Errorf("Closes()[%d] = %v, want %v", i, closes[i], want[i])
		}
	}
}

func TestStock_RecentCloses(t *testing.T) {
	stock := Stock{
		Symbol: "ABC",
		History: []Candle{
			{Date: "2019-01-01", Close: 1.0},
			{Date: "2019-01-02", Close: 1.1},
			{Date: "2019-01-03", Close: 1.2},
			{Date: "2019-01-04", Close: 1.3},
		},
	}

	t.Run("window ends on requested date", func(t *testing.T) {
		closes := stock.RecentCloses("2019-01-03", 3)
		if len(closes) != 3 {
			t.Fatalf("len = %d, want 3", len(closes))
		}
		if closes[0] != 1.0 || closes[2] != 1.2 {
			t.Errorf("closes = %v", closes)
		}
	})

	t.Run("date absent from history", func(t *testing.T) {
		if closes := stock.RecentCloses("2019-02-01", 2); closes != nil {
			t.Errorf("expected nil, got %v", closes)
		}
	})

	t.Run("not enough prior candles", func(t *testing.T) {
		if closes := stock.RecentCloses("2019-01-02", 3); closes != nil {
			t.Errorf("expected nil, got %v", closes)
		}
	})
}

func TestStock_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		stock Stock
		want  bool
	}{
		{"complete", Stock{Symbol: "ABC", ListingDate: "2015-01-01"}, true},
		{"missing symbol", Stock{ListingDate: "2015-01-01"}, false},
		{"missing listing date", Stock{Symbol: "ABC"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stock.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
