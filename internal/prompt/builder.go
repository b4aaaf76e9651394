package prompt

import (
	_ "embed"
	"text/template"
)

//go:embed templates/seo_keywords.tmpl
var seoKeywordsTmpl string

//go:embed templates/meta_descriptions.tmpl
var metaDescriptionsTmpl string

//go:embed templates/schema_markup.tmpl
var schemaMarkupTmpl string

//go:embed templates/content_brief.tmpl
var contentBriefTmpl string

//go:embed templates/maps_keywords.tmpl
var mapsKeywordsTmpl string

//go:embed templates/youtube.tmpl
var youTubeTmpl string

//go:embed templates/linkedin.tmpl
var linkedInTmpl string

//go:embed templates/instagram.tmpl
var instagramTmpl string

//go:embed templates/facebook.tmpl
var facebookTmpl string

var (
	seoKeywords      = template.Must(template.New("seo_keywords").Parse(seoKeywordsTmpl))
	metaDescriptions = template.Must(template.New("meta_descriptions").Parse(metaDescriptionsTmpl))
	schemaMarkup     = template.Must(template.New("schema_markup").Parse(schemaMarkupTmpl))
	contentBrief     = template.Must(template.New("content_brief").Parse(contentBriefTmpl))
	mapsKeywords     = template.Must(template.New("maps_keywords").Parse(mapsKeywordsTmpl))
	youTube          = template.Must(template.New("youtube").Parse(youTubeTmpl))
	linkedIn         = template.Must(template.New("linkedin").Parse(linkedInTmpl))
	instagram        = template.Must(template.New("instagram").Parse(instagramTmpl))
	facebook         = template.Must(template.New("facebook").Parse(facebookTmpl))
)

func data(input string, opts Options) promptData {
	return promptData{
		Input:       input,
		Competitors: opts.Competitors,
		Language:    opts.Language,
		PageContent: opts.PageContent,
		Category:    opts.Category,
		HasVisual:   opts.Attachment != nil,
	}
}

// SeoKeywords builds the keyword-research request for a business description
// or full page content.
func SeoKeywords(input string, opts Options) Request {
	return Request{
		Instruction: render(seoKeywords, data(input, opts)),
		Shape:       seoShape(),
	}
}

// MetaDescriptions builds the meta-description request.
func MetaDescriptions(input string, opts Options) Request {
	return Request{
		Instruction: render(metaDescriptions, data(input, opts)),
		Shape:       metaDescriptionShape(),
	}
}

// SchemaMarkup builds the JSON-LD structured-data request.
func SchemaMarkup(input string, opts Options) Request {
	return Request{
		Instruction: render(schemaMarkup, data(input, opts)),
		Shape:       schemaMarkupShape(),
	}
}

// ContentBrief builds the SERP-analysis content brief request for a target
// keyword.
func ContentBrief(keyword string, opts Options) Request {
	return Request{
		Instruction: render(contentBrief, data(keyword, opts)),
		Shape:       contentBriefShape(),
	}
}

// MapsKeywords builds the location-grounded local-SEO request. No shape: the
// grounded variant asks for a JSON object inside a markdown block and the
// gateway parses it out.
func MapsKeywords(input string, location LatLng, opts Options) Request {
	return Request{
		Instruction: render(mapsKeywords, data(input, opts)),
		Location:    &location,
	}
}

// YouTube builds the video-content request. opts.Category tailors the
// suggestions; opts.Attachment switches to the visual-analysis variant.
func YouTube(videoInfo string, opts Options) Request {
	return Request{
		Instruction: render(youTube, data(videoInfo, opts)),
		Shape:       youTubeShape(),
		Attachment:  opts.Attachment,
	}
}

// LinkedIn builds the professional-hashtag request.
func LinkedIn(postInfo string, opts Options) Request {
	return Request{
		Instruction: render(linkedIn, data(postInfo, opts)),
		Shape:       hashtagShape(),
		Attachment:  opts.Attachment,
	}
}

// Instagram builds the caption-and-hashtags request.
func Instagram(postInfo string, opts Options) Request {
	return Request{
		Instruction: render(instagram, data(postInfo, opts)),
		Shape:       instagramShape(),
		Attachment:  opts.Attachment,
	}
}

// Facebook builds the post-text, hashtags and call-to-action request.
func Facebook(postInfo string, opts Options) Request {
	return Request{
		Instruction: render(facebook, data(postInfo, opts)),
		Shape:       facebookShape(),
		Attachment:  opts.Attachment,
	}
}
