package density

import (
	"math"
	"testing"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    float64
	}{
		{"two of five", "go go stop stop stop", "go", 40},
		{"case insensitive", "Go went GO gone", "go", 50},
		{"whole word only", "golang goes going", "go", 0},
		{"multi-word keyword", "best coffee shop near the coffee shop", "coffee shop", 2.0 / 7.0 * 100},
		// QuoteMeta keeps metacharacters literal; "$5.00" cannot match at a
		// word boundary, so the count is 0 rather than a regex error.
		{"regex metacharacters", "price is $5.00 today", "$5.00", 0},
		{"empty text", "", "go", 0},
		{"empty keyword", "some text", "", 0},
		{"keyword absent", "nothing relevant here", "go", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(tt.text, tt.keyword)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentage(%q, %q) = %v, want %v", tt.text, tt.keyword, got, tt.want)
			}
		})
	}
}
