package core

import (
	"errors"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	cases := []struct {
		page      int
		wantPage  int
		wantLen   int
		wantFirst int
	}{
		{1, 1, 10, 0},
		{2, 2, 10, 10},
		{3, 3, 3, 20},
		{9, 3, 3, 20},
		{0, 1, 10, 0},
	}
	for _, tc := range cases {
		p := Paginate(items, tc.page, PageSize)
		if p.Page != tc.wantPage || len(p.Items) != tc.wantLen || p.Items[0] != tc.wantFirst {
			t.Errorf("page %d: got page=%d len=%d first=%d", tc.page, p.Page, len(p.Items), p.Items[0])
		}
		if p.TotalPages != 3 || p.TotalItems != 23 {
			t.Errorf("page %d: totals %d/%d", tc.page, p.TotalPages, p.TotalItems)
		}
	}

	empty := Paginate([]int{}, 1, PageSize)
	if len(empty.Items) != 0 || empty.TotalPages != 0 || empty.Page != 1 {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

func TestFilter(t *testing.T) {
	residents := []Resident{
		resident("1", "Budi Santoso", kk, HeadOfHousehold, "A1", CategoryA),
		resident("2", "Siti", "3201010101010002", "Istri", "B7", ""),
	}
	got := Filter(residents, "SANTOSO", Resident.SearchFields)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("name search failed: %+v", got)
	}
	got = Filter(residents, "b7", Resident.SearchFields)
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unit search failed: %+v", got)
	}
	if len(Filter(residents, "  ", Resident.SearchFields)) != 2 {
		t.Fatalf("blank search must keep everything")
	}
}

func TestAdminLists(t *testing.T) {
	l := DefaultAdminLists()
	if len(l[ListUnit]) != 32 || l[ListUnit][0] != "A1" || l[ListUnit][31] != "D8" {
		t.Fatalf("unexpected unit list %v", l[ListUnit])
	}

	if err := l.Add(ListReligion, "  Kepercayaan "); err != nil {
		t.Fatalf("add: %v", err)
	}
	if last := l[ListReligion][len(l[ListReligion])-1]; last != "Kepercayaan" {
		t.Fatalf("expected trimmed item, got %q", last)
	}
	if err := l.Add(ListReligion, "Islam"); !errors.Is(err, ErrDuplicateListItem) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := l.Add(ListReligion, "   "); !errors.Is(err, ErrEmptyListItem) {
		t.Fatalf("expected empty error, got %v", err)
	}
	if err := l.Add("hobi", "x"); !errors.Is(err, ErrUnknownListCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}

	clone := l.Clone()
	if err := l.Remove(ListReligion, "Islam"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, v := range l[ListReligion] {
		if v == "Islam" {
			t.Fatalf("item not removed")
		}
	}
	if clone[ListReligion][0] != "Islam" {
		t.Fatalf("clone affected by remove")
	}
}
