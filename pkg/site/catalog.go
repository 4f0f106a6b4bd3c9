package site

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ScanDecks builds the catalog of deck directories under root without writing it.
func ScanDecks(root string) (DeckCatalog, error) {
	cat := DeckCatalog{Version: 1, GeneratedAt: time.Now(), Decks: []Deck{}}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return cat, nil
		}
		return cat, err
	}

	for _, e := range entries {
		if e == nil || !e.IsDir() {
			continue
		}
		m, err := ReadManifest(filepath.Join(root, e.Name()))
		if err != nil {
			// Not a deck directory.
			continue
		}
		cat.Decks = append(cat.Decks, Deck{
			Dir:         e.Name(),
			ID:          m.ID,
			Title:       m.Title,
			Topic:       m.Topic,
			Theme:       m.Theme,
			SlideCount:  m.Stats.SlideCount,
			GeneratedAt: m.GeneratedAt,
		})
	}

	sort.Slice(cat.Decks, func(i, j int) bool {
		a, b := cat.Decks[i], cat.Decks[j]
		if !a.GeneratedAt.Equal(b.GeneratedAt) {
			return a.GeneratedAt.After(b.GeneratedAt)
		}
		return a.Dir < b.Dir
	})
	return cat, nil
}

// WriteDeckCatalog scans root for deck directories and writes root/decks.json.
func WriteDeckCatalog(root string) (DeckCatalog, error) {
	cat, err := ScanDecks(root)
	if err != nil {
		return cat, err
	}
	if err := writeJSON(filepath.Join(root, CatalogFile), cat); err != nil {
		return cat, err
	}
	return cat, nil
}
