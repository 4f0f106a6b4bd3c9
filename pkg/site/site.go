// Package site writes generated decks to disk as static files: the standalone
// HTML document plus JSON data a frontend can load without a server API.
package site

import "time"

// File names inside a deck directory.
const (
	HTMLFile     = "index.html"
	SlidesFile   = "slides.json"
	OutlineFile  = "outline.json"
	ManifestFile = "manifest.json"
	CatalogFile  = "decks.json"
)

// Manifest describes one deck directory. Paths are relative to it.
type Manifest struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`

	ID    string `json:"id"`
	Topic string `json:"topic"`
	Title string `json:"title"`
	Theme string `json:"theme"`
	Tone  string `json:"tone,omitempty"`
	Model string `json:"model,omitempty"`

	HTMLPath    string `json:"html_path"`
	SlidesPath  string `json:"slides_path"`
	OutlinePath string `json:"outline_path"`

	Stats ManifestStats `json:"stats"`
}

type ManifestStats struct {
	SlideCount      int   `json:"slide_count"`
	SectionCount    int   `json:"section_count"`
	AssetCount      int   `json:"asset_count,omitempty"`
	Warnings        int   `json:"warnings,omitempty"`
	DurationMinutes int   `json:"duration_minutes,omitempty"`
	ElapsedMillis   int64 `json:"elapsed_ms,omitempty"`
}

// DeckCatalog is a static index of the decks under an output root.
type DeckCatalog struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Decks       []Deck    `json:"decks"`
}

// Deck is a catalog entry, newest first.
type Deck struct {
	Dir         string    `json:"dir"` // relative to the catalog
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Theme       string    `json:"theme"`
	SlideCount  int       `json:"slide_count"`
	GeneratedAt time.Time `json:"generated_at"`
}
