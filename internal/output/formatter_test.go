package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

var testKeywords = []copysmith.KeywordSuggestion{
	{Keyword: "artisan bread lisbon", SearchVolume: "High", TrendingRank: 2, UserIntent: "Commercial", Competition: "Medium", CPC: "$0.50 - $1.20"},
	{Keyword: "sourdough near me", SearchVolume: "Medium", TrendingRank: 1, UserIntent: "Local Transactional", Competition: "Low", CPC: "$0.30 - $0.80", StrategicInsight: "Competitors ignore this."},
}

func TestOutputKeywordsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriters(FormatJSON, &buf, &buf)

	if err := f.OutputKeywords(testKeywords); err != nil {
		t.Fatalf("OutputKeywords failed: %v", err)
	}

	var decoded []copysmith.KeywordSuggestion
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Keyword != "artisan bread lisbon" {
		t.Errorf("Round trip mismatch: %+v", decoded)
	}
}

func TestOutputKeywordsText(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriters(FormatText, &buf, &buf)

	if err := f.OutputKeywords(testKeywords); err != nil {
		t.Fatalf("OutputKeywords failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "keyword=artisan bread lisbon") {
		t.Errorf("Unexpected text line: %s", lines[0])
	}
}

func TestOutputKeywordsHumanShowsInsight(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &buf, &buf)

	if err := f.OutputKeywords(testKeywords); err != nil {
		t.Fatalf("OutputKeywords failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Competitors ignore this.") {
		t.Error("Strategic insight missing from human output")
	}
}

func TestOutputUnknownFormat(t *testing.T) {
	f := NewFormatterWithWriters(Format("yaml"), &bytes.Buffer{}, &bytes.Buffer{})
	if err := f.OutputKeywords(testKeywords); err == nil {
		t.Fatal("Expected error for unknown format")
	}
}

func testHistory() []storage.HistoryItem {
	return []storage.HistoryItem{
		{
			ID:        1757000000000,
			Platform:  "Website SEO",
			Icon:      "🌐",
			Input:     "bakery in lisbon",
			Result:    json.RawMessage(`{"keywords":[]}`),
			CreatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistoryCSV(&buf, testHistory()); err != nil {
		t.Fatalf("WriteHistoryCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "ID" || records[1][1] != "Website SEO" {
		t.Errorf("Unexpected CSV contents: %v", records)
	}
}

func TestWriteHistoryTableSanitizes(t *testing.T) {
	items := testHistory()
	items[0].Input = `<script>alert("x")</script>bakery`

	var buf bytes.Buffer
	if err := WriteHistoryTable(&buf, items); err != nil {
		t.Fatalf("WriteHistoryTable failed: %v", err)
	}

	got := buf.String()
	if strings.Contains(got, "<script>") {
		t.Error("Script tag survived sanitization")
	}
	if !strings.Contains(got, "bakery") {
		t.Error("Legitimate text removed")
	}
	if !strings.Contains(got, "<table") || !strings.Contains(got, "</table>") {
		t.Error("Output is not an HTML table")
	}
}

func TestWriteKeywordsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteKeywordsCSV(&buf, testKeywords); err != nil {
		t.Fatalf("WriteKeywordsCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(records))
	}
	if records[2][7] != "Competitors ignore this." {
		t.Errorf("Strategic insight column wrong: %v", records[2])
	}
}
