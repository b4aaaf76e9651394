package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatHuman Format = "human"
)

type Formatter struct {
	format Format
	out    io.Writer
	err    io.Writer
}

// NewFormatter creates a new output formatter
func NewFormatter(format Format) *Formatter {
	return &Formatter{
		format: format,
		out:    os.Stdout,
		err:    os.Stderr,
	}
}

// NewFormatterWithWriters creates a formatter with custom output writers for testability
func NewFormatterWithWriters(format Format, out, errW io.Writer) *Formatter {
	return &Formatter{
		format: format,
		out:    out,
		err:    errW,
	}
}

// OutputKeywords outputs a keyword suggestion list in the configured format.
func (f *Formatter) OutputKeywords(keywords []copysmith.KeywordSuggestion) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(keywords)
	case FormatText:
		for _, k := range keywords {
			fmt.Fprintf(f.out, "keyword=%s\tvolume=%s\trank=%.0f\tintent=%s\tcompetition=%s\tcpc=%s\n",
				k.Keyword, k.SearchVolume, k.TrendingRank, k.UserIntent, k.Competition, k.CPC)
		}
		return nil
	case FormatHuman:
		if len(keywords) == 0 {
			fmt.Fprintln(f.out, "No keywords generated")
			return nil
		}
		for _, k := range keywords {
			fmt.Fprintf(f.out, "• %s (volume %s, rank %.0f, %s intent)\n",
				k.Keyword, k.SearchVolume, k.TrendingRank, k.UserIntent)
			if k.StrategicInsight != "" {
				fmt.Fprintf(f.out, "  ↳ %s\n", k.StrategicInsight)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputSeoBundles outputs one or more joint SEO results.
func (f *Formatter) OutputSeoBundles(bundles []copysmith.SeoBundle) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(bundles)
	case FormatText:
		for _, b := range bundles {
			fmt.Fprintf(f.out, "input=%s\tkeywords=%d\tmeta=%d\tschema=%s\n",
				b.Input, len(b.Keywords), len(b.MetaDescriptions), b.SchemaType)
		}
		return nil
	case FormatHuman:
		for _, b := range bundles {
			fmt.Fprintf(f.out, "=== %s ===\n", b.Input)
			if err := f.OutputKeywords(b.Keywords); err != nil {
				return err
			}
			for i, m := range b.MetaDescriptions {
				fmt.Fprintf(f.out, "Meta %d: %s\n", i+1, m)
			}
			fmt.Fprintf(f.out, "Schema (%s):\n%s\n", b.SchemaType, b.JSONLD)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputBrief outputs a content brief.
func (f *Formatter) OutputBrief(brief *copysmith.ContentBrief) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(brief)
	case FormatText:
		fmt.Fprintf(f.out, "intent=%s\ttitle=%s\twords=%s\n",
			brief.SearchIntent, brief.SuggestedTitle, brief.TargetWordCount)
		return nil
	case FormatHuman:
		fmt.Fprintf(f.out, "Title: %s\n", brief.SuggestedTitle)
		fmt.Fprintf(f.out, "Intent: %s | Target: %s\n", brief.SearchIntent, brief.TargetWordCount)
		fmt.Fprintf(f.out, "Meta: %s\n", brief.MetaDescription)
		fmt.Fprintf(f.out, "SERP: %s\n", brief.SerpAnalysis)
		fmt.Fprintf(f.out, "Topics: %s\n", strings.Join(brief.KeyTopics, ", "))
		fmt.Fprintln(f.out, "Outline:")
		for _, h := range brief.SuggestedOutline {
			fmt.Fprintf(f.out, "  ## %s\n", h.Heading)
			for _, c := range h.Children {
				fmt.Fprintf(f.out, "    ### %s\n", c.Heading)
			}
		}
		fmt.Fprintln(f.out, "Questions to answer:")
		for _, q := range brief.QuestionsToAnswer {
			fmt.Fprintf(f.out, "  - %s\n", q)
		}
		fmt.Fprintf(f.out, "Linking: %s\n", brief.LinkingSuggestions)
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputMapsResult outputs a grounded local-SEO result with its sources.
func (f *Formatter) OutputMapsResult(result *copysmith.MapsResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(result)
	case FormatText:
		for _, k := range result.Keywords {
			fmt.Fprintf(f.out, "keyword=%s\tvolume=%s\tintent=%s\n", k.Keyword, k.SearchVolume, k.UserIntent)
		}
		for _, c := range result.Citations {
			fmt.Fprintf(f.out, "source=%s\ttitle=%s\n", c.URI, c.Title)
		}
		return nil
	case FormatHuman:
		if err := f.OutputKeywords(result.Keywords); err != nil {
			return err
		}
		if len(result.Citations) > 0 {
			fmt.Fprintln(f.out, "Sources:")
			for _, c := range result.Citations {
				fmt.Fprintf(f.out, "  %s (%s)\n", c.Title, c.URI)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputSocial outputs a social-content result.
func (f *Formatter) OutputSocial(content *copysmith.SocialContent) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(content)
	case FormatText:
		for _, c := range content.Caption {
			fmt.Fprintf(f.out, "caption=%s\n", c)
		}
		for _, h := range content.Hashtags {
			fmt.Fprintf(f.out, "hashtag=%s\tvolume=%s\trank=%.0f\n", h.Keyword, h.SearchVolume, h.TrendingRank)
		}
		for _, cta := range content.CallToActions {
			fmt.Fprintf(f.out, "cta=%s\n", cta)
		}
		return nil
	case FormatHuman:
		for _, c := range content.Caption {
			fmt.Fprintf(f.out, "%s\n\n", c)
		}
		var tags []string
		for _, h := range content.Hashtags {
			tags = append(tags, h.Keyword)
		}
		if len(tags) > 0 {
			fmt.Fprintln(f.out, strings.Join(tags, " "))
		}
		for _, cta := range content.CallToActions {
			fmt.Fprintf(f.out, "CTA: %s\n", cta)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputYouTube outputs a video-content result.
func (f *Formatter) OutputYouTube(content *copysmith.YouTubeContent) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(content)
	case FormatText:
		for _, tag := range content.VideoTags {
			fmt.Fprintf(f.out, "tag=%s\tvolume=%s\trank=%.0f\n", tag.Keyword, tag.SearchVolume, tag.TrendingRank)
		}
		for _, title := range content.TitleSuggestions {
			fmt.Fprintf(f.out, "title=%s\n", title)
		}
		return nil
	case FormatHuman:
		fmt.Fprintln(f.out, "Titles:")
		for _, title := range content.TitleSuggestions {
			fmt.Fprintf(f.out, "  - %s\n", title)
		}
		for _, d := range content.VideoDescription {
			fmt.Fprintf(f.out, "Description:\n%s\n", d)
		}
		var tags []string
		for _, tag := range content.VideoTags {
			tags = append(tags, tag.Keyword)
		}
		fmt.Fprintf(f.out, "Tags: %s\n", strings.Join(tags, ", "))
		fmt.Fprintf(f.out, "Categories: %s\n", strings.Join(content.SuggestedCategories, ", "))
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputHistory outputs history items.
func (f *Formatter) OutputHistory(items []storage.HistoryItem) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(items)
	case FormatText:
		for _, it := range items {
			fmt.Fprintf(f.out, "id=%d\tplatform=%s\tcreated=%s\tinput=%s\n",
				it.ID, it.Platform, it.CreatedAt.Format("2006-01-02 15:04"), it.Input)
		}
		return nil
	case FormatHuman:
		if len(items) == 0 {
			fmt.Fprintln(f.out, "No history yet")
			return nil
		}
		for _, it := range items {
			fmt.Fprintf(f.out, "%s %s — %s (%s)\n",
				it.Icon, it.Platform, it.Input, it.CreatedAt.Format("Jan 2 15:04"))
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputCalendar outputs scheduled posts.
func (f *Formatter) OutputCalendar(posts []storage.ScheduledPost) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(posts)
	case FormatText:
		for _, p := range posts {
			fmt.Fprintf(f.out, "id=%s\twhen=%s\tplatform=%s\ttitle=%s\n",
				p.ID, p.ScheduledAt.Format("2006-01-02 15:04"), p.Platform, p.Title)
		}
		return nil
	case FormatHuman:
		if len(posts) == 0 {
			fmt.Fprintln(f.out, "Nothing scheduled")
			return nil
		}
		for _, p := range posts {
			fmt.Fprintf(f.out, "%s  [%s] %s\n", p.ScheduledAt.Format("Jan 2 15:04"), p.Platform, p.Title)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputManagedUsers outputs the device access registry.
func (f *Formatter) OutputManagedUsers(users []storage.ManagedUser) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(users)
	case FormatText:
		for _, u := range users {
			fmt.Fprintf(f.out, "device=%s\tkey=%s\n", u.DeviceID, u.AccessKey)
		}
		return nil
	case FormatHuman:
		if len(users) == 0 {
			fmt.Fprintln(f.out, "No devices have access")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(f.out, "%s → %s\n", u.DeviceID, u.AccessKey)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// Error prints an error to the error writer regardless of format.
func (f *Formatter) Error(err error) {
	fmt.Fprintf(f.err, "Error: %v\n", err)
}
