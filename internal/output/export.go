package output

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

// sanitizer strips any markup the model smuggled into its strings before
// they land in an HTML document.
var sanitizer = bluemonday.StrictPolicy()

// WriteKeywordsCSV writes a keyword list as CSV for spreadsheet import.
func WriteKeywordsCSV(w io.Writer, keywords []copysmith.KeywordSuggestion) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Keyword", "Search Volume", "Trending Rank", "User Intent", "Competition", "CPC", "Density %", "Strategic Insight"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, k := range keywords {
		density := ""
		if k.Density > 0 {
			density = strconv.FormatFloat(k.Density, 'f', 2, 64)
		}
		row := []string{
			k.Keyword, k.SearchVolume,
			strconv.FormatFloat(k.TrendingRank, 'f', -1, 64),
			k.UserIntent, k.Competition, k.CPC, density, k.StrategicInsight,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistoryCSV writes history items as CSV.
func WriteHistoryCSV(w io.Writer, items []storage.HistoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Platform", "Input", "Created At", "Result"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		row := []string{
			strconv.FormatInt(it.ID, 10),
			it.Platform,
			it.Input,
			it.CreatedAt.Format("2006-01-02 15:04:05"),
			string(it.Result),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistoryTable writes history items as a standalone HTML table, the
// format spreadsheet apps accept on import. Model-produced strings go
// through the sanitizer first.
func WriteHistoryTable(w io.Writer, items []storage.HistoryItem) error {
	if _, err := fmt.Fprint(w, "<table border=\"1\">\n<tr><th>ID</th><th>Platform</th><th>Input</th><th>Created At</th><th>Result</th></tr>\n"); err != nil {
		return err
	}
	for _, it := range items {
		_, err := fmt.Fprintf(w, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			it.ID,
			cell(it.Platform),
			cell(it.Input),
			it.CreatedAt.Format("2006-01-02 15:04:05"),
			cell(string(it.Result)),
		)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "</table>\n")
	return err
}

func cell(s string) string {
	return html.EscapeString(sanitizer.Sanitize(s))
}
