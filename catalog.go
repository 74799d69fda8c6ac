/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

//go:embed data/restaurants.json
var defaultCatalog []byte

type Competitor struct {
	Name    string `json:"name"`
	Link    string `json:"link"`
	Reviews string `json:"reviews"`
}

// Restaurant is one catalog record. Records are handed to rooms as
// candidates, so the JSON shape is what clients render.
type Restaurant struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Rating              float64         `json:"rating,omitempty"`
	ReviewCount         int             `json:"reviewCount,omitempty"`
	Categories          []string        `json:"categories"`
	MainCategory        string          `json:"mainCategory,omitempty"`
	Address             string          `json:"address,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	Website             string          `json:"website,omitempty"`
	FeaturedImage       string          `json:"featuredImage,omitempty"`
	WorkdayTiming       string          `json:"workdayTiming,omitempty"`
	ClosedOn            json.RawMessage `json:"closedOn,omitempty"` // string or list of days
	IsTemporarilyClosed bool            `json:"isTemporarilyClosed"`
	ReviewKeywords      []string        `json:"reviewKeywords,omitempty"`
	GoogleMapsLink      string          `json:"googleMapsLink,omitempty"`
	Competitors         []Competitor    `json:"competitors,omitempty"`
	IsSpendingOnAds     bool            `json:"isSpendingOnAds"`
}

// SearchFilters narrows catalog queries. Zero values mean "no filter".
type SearchFilters struct {
	Query      string
	Category   string
	MinRating  float64
	MaxRating  float64
	MinReviews int
	OpenOnly   bool
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Catalog is read-only after load and safe for concurrent use.
type Catalog struct {
	restaurants []Restaurant
}

func parseCatalog(data []byte) (*Catalog, error) {
	var restaurants []Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		return nil, fmt.Errorf("parse restaurant catalog: %w", err)
	}

	return &Catalog{restaurants: restaurants}, nil
}

// loadCatalog reads --catalog if set, otherwise the embedded sample.
func loadCatalog(cfg *Config) (*Catalog, error) {
	data := defaultCatalog
	source := "embedded catalog"

	if cfg.catalog != "" {
		var err error
		data, err = readCatalogFile(cfg.catalog)
		if err != nil {
			return nil, err
		}
		source = cfg.catalog
	}

	cat, err := parseCatalog(data)
	if err != nil {
		return nil, err
	}

	logf(cfg, "START: Loaded %d restaurants from %s (%s)", cat.Len(), source, humanReadableSize(int64(len(data))))

	return cat, nil
}

func (c *Catalog) Len() int {
	return len(c.restaurants)
}

func (r *Restaurant) matches(f SearchFilters) bool {
	if f.Query != "" {
		text := strings.ToLower(strings.Join([]string{
			r.Name,
			r.Description,
			strings.Join(r.Categories, " "),
			strings.Join(r.ReviewKeywords, " "),
		}, " "))
		if !strings.Contains(text, strings.ToLower(f.Query)) {
			return false
		}
	}

	if f.Category != "" {
		want := strings.ToLower(f.Category)
		found := false
		for _, c := range r.Categories {
			if strings.Contains(strings.ToLower(c), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.MinRating > 0 && r.Rating < f.MinRating {
		return false
	}
	if f.MaxRating > 0 && r.Rating > f.MaxRating {
		return false
	}
	if f.MinReviews > 0 && r.ReviewCount < f.MinReviews {
		return false
	}
	if f.OpenOnly && r.IsTemporarilyClosed {
		return false
	}

	return true
}

// Search returns matching restaurants in catalog order.
func (c *Catalog) Search(f SearchFilters) []Restaurant {
	out := []Restaurant{}
	for i := range c.restaurants {
		if c.restaurants[i].matches(f) {
			out = append(out, c.restaurants[i])
		}
	}
	return out
}

// Random returns up to count matching restaurants in random order.
func (c *Catalog) Random(count int, f SearchFilters) []Restaurant {
	out := c.Search(f)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return limit(out, count)
}

// Top returns up to count matching restaurants, best rated first, more
// reviews breaking ties.
func (c *Catalog) Top(count int, f SearchFilters) []Restaurant {
	out := c.Search(f)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ReviewCount > out[j].ReviewCount
	})
	return limit(out, count)
}

func (c *Catalog) ByID(id string) (Restaurant, bool) {
	for _, r := range c.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return Restaurant{}, false
}

// Categories counts restaurants per category, most common first.
func (c *Catalog) Categories() []CategoryCount {
	counts := make(map[string]int)
	for _, r := range c.restaurants {
		for _, cat := range r.Categories {
			counts[cat]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})

	return out
}

func limit(rs []Restaurant, count int) []Restaurant {
	if count >= 0 && len(rs) > count {
		return rs[:count]
	}
	return rs
}
