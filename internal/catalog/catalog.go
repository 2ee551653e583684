package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

// RowSource reads a rectangular range of cells. The first row is the header.
type RowSource interface {
	ReadRows(ctx context.Context, sourceID, rangeSpec string) ([][]string, error)
}

// Source turns spreadsheet rows into catalog items, merging image URLs from a
// second range by item id.
type Source struct {
	Rows           RowSource
	SourceID       string
	ItemsRange     string
	ImagesSourceID string
	ImagesRange    string
	Logger         zerolog.Logger
}

func (s *Source) FetchItems(ctx context.Context) ([]models.CatalogItem, error) {
	rows, err := s.Rows.ReadRows(ctx, s.SourceID, s.ItemsRange)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	items := ParseItems(rows)
	if len(items) == 0 || (s.ImagesSourceID == "" && s.ImagesRange == "") {
		return items, nil
	}

	imagesSource := s.ImagesSourceID
	if imagesSource == "" {
		imagesSource = s.SourceID
	}
	imageRows, err := s.Rows.ReadRows(ctx, imagesSource, s.ImagesRange)
	if err != nil {
		// Items are still browsable without pictures.
		s.Logger.Warn().Err(err).Msg("catalog images unavailable")
		return items, nil
	}
	return MergeImages(items, ParseImages(imageRows)), nil
}

// ParseItems maps rows to items. Rows without an id are dropped.
func ParseItems(rows [][]string) []models.CatalogItem {
	if len(rows) == 0 {
		return nil
	}
	idx := headerIndex(rows[0])
	var out []models.CatalogItem
	for _, rec := range rows[1:] {
		item := models.CatalogItem{
			ID:          getFieldAny(rec, idx, "id", "product_id", "item_id", "sku"),
			Name:        getFieldAny(rec, idx, "name", "title", "product_name"),
			Price:       getFieldAny(rec, idx, "price", "cost"),
			Description: getFieldAny(rec, idx, "description", "desc", "details"),
			ImageURL:    getFieldAny(rec, idx, "image_url", "image", "photo"),
		}
		if item.ID == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ParseImages maps item id to image URL. The first URL for an id wins.
func ParseImages(rows [][]string) map[string]string {
	out := map[string]string{}
	if len(rows) == 0 {
		return out
	}
	idx := headerIndex(rows[0])
	for _, rec := range rows[1:] {
		id := getFieldAny(rec, idx, "id", "product_id", "item_id", "sku")
		url := getFieldAny(rec, idx, "image_url", "url", "image", "link")
		if id == "" || url == "" {
			continue
		}
		if _, ok := out[id]; !ok {
			out[id] = url
		}
	}
	return out
}

func MergeImages(items []models.CatalogItem, images map[string]string) []models.CatalogItem {
	for i := range items {
		if url, ok := images[items[i].ID]; ok {
			items[i].ImageURL = url
		}
	}
	return items
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}
