package prompt

// Shape declares the JSON structure a platform expects back from the model.
// It is a neutral schema tree; each gateway client renders it into its own
// dialect (Gemini responseSchema, Ollama format).
type Shape struct {
	Type        string
	Description string
	Properties  map[string]*Shape
	Items       *Shape
	Required    []string
	// Ordering hints the property order for models that honor it.
	Ordering []string
}

func str(desc string) *Shape    { return &Shape{Type: "string", Description: desc} }
func strArr(desc string) *Shape { return &Shape{Type: "array", Items: str(""), Description: desc} }

// keywordShape describes one keyword suggestion with its metadata. Shared by
// every platform that returns keywords, tags, or hashtags.
func keywordShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"keyword":      str("The suggested keyword, tag, or hashtag."),
			"searchVolume": str(`Estimated search volume as "High", "Medium", or "Low".`),
			"trendingRank": {Type: "number", Description: "A rank from 1 to 10 indicating recent trendiness, with 1 being the most actively trending."},
			"userIntent":   str(`The likely user intent: "Informational", "Navigational", "Commercial", or "Transactional". For local SEO, also "Local Transactional" or "Local Informational".`),
			"competition":  str(`Estimated competition level for ranking: "High", "Medium", or "Low".`),
			"cpc":          str(`An estimated cost-per-click range, e.g. "$0.50 - $2.00".`),
			"strategicInsight": str("A brief, actionable insight explaining why this keyword is valuable, " +
				"especially in relation to the provided competitors."),
		},
		Required: []string{"keyword", "searchVolume", "trendingRank", "userIntent", "competition", "cpc"},
	}
}

func keywordList(desc string) *Shape {
	return &Shape{Type: "array", Items: keywordShape(), Description: desc}
}

func seoShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"keywords": keywordList("A comprehensive list of 20-30 SEO keywords, including head, body, and long-tail terms."),
		},
	}
}

func metaDescriptionShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"metaDescriptions": strArr("An array of 3 unique, compelling, SEO-optimized meta description suggestions, each under 160 characters."),
		},
	}
}

func schemaMarkupShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"schemaType": str("The identified schema.org type, e.g. 'LocalBusiness', 'Article', 'Product'."),
			"jsonLd":     str("The complete and valid JSON-LD schema markup as a JSON string."),
		},
		Required: []string{"schemaType", "jsonLd"},
	}
}

func contentBriefShape() *Shape {
	outlineItem := &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"heading": str(""),
			"children": {
				Type: "array",
				Items: &Shape{
					Type:       "object",
					Properties: map[string]*Shape{"heading": str("")},
					Required:   []string{"heading"},
				},
			},
		},
		Required: []string{"heading", "children"},
	}
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"searchIntent":      str(`The likely user intent (e.g. "Informational", "Commercial").`),
			"suggestedTitle":    str("An SEO-optimized title for the content, under 60 characters."),
			"metaDescription":   str("A compelling meta description, under 160 characters."),
			"serpAnalysis":      str("A brief summary of the top 10 search results, including content types and common themes."),
			"keyTopics":         strArr("A list of essential semantic keywords and sub-topics to cover."),
			"questionsToAnswer": strArr(`A list of common user questions to answer, inspired by "People Also Ask".`),
			"suggestedOutline":  {Type: "array", Items: outlineItem, Description: "A hierarchical content outline with H2s and H3s."},
			"targetWordCount":   str(`An estimated word count to be competitive (e.g. "1500-2000 words").`),
			"linkingSuggestions": str("Suggestions for internal and external links to include."),
		},
		Required: []string{
			"searchIntent", "suggestedTitle", "metaDescription", "serpAnalysis",
			"keyTopics", "questionsToAnswer", "suggestedOutline", "targetWordCount",
			"linkingSuggestions",
		},
	}
}

func youTubeShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"Video Tags":           keywordList("A list of 15-20 relevant and trending video tags with search volume and trending rank."),
			"Description Keywords": keywordList("Trending keywords to include naturally in the video description."),
			"Video Description":    strArr("An array containing a single string: a compelling, SEO-optimized video description (3-4 sentences)."),
			"Title Suggestions":    strArr("3 creative and SEO-friendly title suggestions."),
			"Suggested Categories": strArr("3-5 relevant category suggestions for the video."),
		},
		Ordering: []string{"Video Tags", "Description Keywords", "Video Description", "Title Suggestions", "Suggested Categories"},
	}
}

func hashtagShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"hashtags": keywordList("A list of relevant and effective hashtags, each with search volume and trending rank."),
		},
	}
}

func instagramShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"Post Caption": strArr("An array with a single string containing an engaging caption (2-3 sentences), tailored to the platform's tone."),
			"hashtags":     keywordList("A list of relevant and effective hashtags, each with search volume and trending rank."),
		},
		Ordering: []string{"Post Caption", "hashtags"},
	}
}

func facebookShape() *Shape {
	return &Shape{
		Type: "object",
		Properties: map[string]*Shape{
			"Post Text":                  strArr("An array with a single string containing an engaging post text (3-5 sentences) that encourages interaction."),
			"hashtags":                   keywordList("A list of 3-7 relevant and effective hashtags, each with search volume and trending rank."),
			"Call to Action Suggestions": strArr("3 distinct and compelling call-to-action suggestions."),
		},
		Ordering: []string{"Post Text", "hashtags", "Call to Action Suggestions"},
	}
}
