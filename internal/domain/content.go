package domain

// ScrapeResult is what the page scraper hands to the cloning pipeline.
// HTML comes back with script/style/iframe content already stripped.
type ScrapeResult struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	HTML        string   `json:"html"`
}

// HeroSection is the above-the-fold block of a generated landing page.
type HeroSection struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
	CTAText     string `json:"cta_text"`
	ImageURL    string `json:"image_url"`
}

// StatsSection carries the property facts highlighted on the page.
type StatsSection struct {
	Bedrooms  string `json:"bedrooms"`
	Bathrooms string `json:"bathrooms"`
	AreaM2    string `json:"area_m2"`
	Price     string `json:"price"`
	Location  string `json:"location"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type AboutSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ContactSection struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// LandingPageContent is the structured page produced by the cloning pipeline.
// Image URLs in GalleryImages and Hero.ImageURL are rewritten exactly once
// (external URL to internal storage URL) before the record is persisted.
type LandingPageContent struct {
	Title          string         `json:"title"`
	SEOTitle       string         `json:"seo_title"`
	SEODescription string         `json:"seo_description"`
	Hero           HeroSection    `json:"hero"`
	Stats          StatsSection   `json:"stats"`
	Features       []Feature      `json:"features"`
	About          AboutSection   `json:"about"`
	GalleryImages  []string       `json:"gallery_images"`
	Contact        ContactSection `json:"contact"`
}

// LandingPage is the persisted record built from a completed cloning job.
type LandingPage struct {
	ID      string             `json:"id"`
	Slug    string             `json:"slug"`
	Title   string             `json:"title"`
	AgentID string             `json:"agent_id"`
	Content LandingPageContent `json:"content"`
}
