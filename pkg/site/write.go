package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cpunion/slidegen/pkg/agent"
	"github.com/cpunion/slidegen/pkg/types"
)

// DeckDirName returns a stable directory name for a result.
func DeckDirName(result *types.GenerationResult) string {
	slug := agent.SectionSlug(result.Outline.Title)
	if slug == "" {
		slug = agent.SectionSlug(result.Metadata.Topic)
	}
	if slug == "" {
		slug = "deck"
	}
	if len(slug) > 48 {
		slug = slug[:48]
	}
	id := result.Metadata.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return slug
	}
	return slug + "-" + id
}

// WriteDeck writes index.html, slides.json, outline.json and manifest.json
// into dir and returns the manifest.
func WriteDeck(dir string, result *types.GenerationResult) (Manifest, error) {
	if result == nil {
		return Manifest{}, fmt.Errorf("write deck: nil result")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Manifest{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, HTMLFile), []byte(result.HTML), 0644); err != nil {
		return Manifest{}, err
	}
	if err := writeJSON(filepath.Join(dir, SlidesFile), result.Slides); err != nil {
		return Manifest{}, err
	}
	if err := writeJSON(filepath.Join(dir, OutlineFile), result.Outline); err != nil {
		return Manifest{}, err
	}

	md := result.Metadata
	manifest := Manifest{
		GeneratedAt: md.GeneratedAt,
		ID:          md.ID,
		Topic:       md.Topic,
		Title:       result.Outline.Title,
		Theme:       result.Theme.Name,
		Tone:        string(md.Tone),
		Model:       md.Model,
		HTMLPath:    HTMLFile,
		SlidesPath:  SlidesFile,
		OutlinePath: OutlineFile,
		Stats: ManifestStats{
			SlideCount:      len(result.Slides),
			SectionCount:    len(result.Outline.Sections),
			AssetCount:      md.AssetCount,
			Warnings:        len(md.Warnings),
			DurationMinutes: result.Outline.EstimatedDurationMinutes,
			ElapsedMillis:   md.ElapsedMillis,
		},
	}
	if err := WriteManifest(filepath.Join(dir, ManifestFile), &manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// WriteManifest fills in the version and generation time when unset and
// writes the manifest.
func WriteManifest(path string, manifest *Manifest) error {
	if manifest.Version <= 0 {
		manifest.Version = 1
	}
	if manifest.GeneratedAt.IsZero() {
		manifest.GeneratedAt = time.Now()
	}
	return writeJSON(path, manifest)
}

// ReadManifest loads a deck's manifest.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	return m, nil
}

// ReadSlides loads a deck's slides.
func ReadSlides(dir string) ([]types.Slide, error) {
	data, err := os.ReadFile(filepath.Join(dir, SlidesFile))
	if err != nil {
		return nil, err
	}
	var slides []types.Slide
	if err := json.Unmarshal(data, &slides); err != nil {
		return nil, fmt.Errorf("parse %s: %w", SlidesFile, err)
	}
	return slides, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
