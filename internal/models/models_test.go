package models

import (
	"fmt"
	"testing"
)

func makeItems(n int) []CatalogItem {
	items := make([]CatalogItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, CatalogItem{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Item %d", i)})
	}
	return items
}

func TestLastPage(t *testing.T) {
	cases := []struct {
		items, size, want int
	}{
		{0, 5, 0},
		{1, 5, 0},
		{5, 5, 0},
		{6, 5, 1},
		{7, 5, 1},
		{10, 5, 1},
		{11, 5, 2},
		{3, 1, 2},
	}
	for _, tc := range cases {
		s := BrowsingSession{Items: makeItems(tc.items), PageSize: tc.size}
		if got := s.LastPage(); got != tc.want {
			t.Fatalf("items=%d size=%d: expected last page %d, got %d", tc.items, tc.size, tc.want, got)
		}
	}
}

func TestClampKeepsPageInRange(t *testing.T) {
	s := BrowsingSession{Items: makeItems(7), PageSize: 5, Page: 9}
	if got := s.Clamp().Page; got != 1 {
		t.Fatalf("expected page clamped to 1, got %d", got)
	}
	s.Page = -3
	if got := s.Clamp().Page; got != 0 {
		t.Fatalf("expected page clamped to 0, got %d", got)
	}
}

func TestPageItems(t *testing.T) {
	s := BrowsingSession{Items: makeItems(7), PageSize: 5}
	if got := len(s.PageItems()); got != 5 {
		t.Fatalf("expected 5 items on first page, got %d", got)
	}
	s.Page = 1
	items := s.PageItems()
	if len(items) != 2 || items[0].ID != "p6" || items[1].ID != "p7" {
		t.Fatalf("unexpected second page: %+v", items)
	}
}

func TestFind(t *testing.T) {
	s := BrowsingSession{Items: makeItems(3), PageSize: 5}
	if item, ok := s.Find("p2"); !ok || item.Name != "Item 2" {
		t.Fatalf("expected p2 to be found, got %+v %v", item, ok)
	}
	if _, ok := s.Find("missing"); ok {
		t.Fatal("expected missing item to be absent")
	}
}
