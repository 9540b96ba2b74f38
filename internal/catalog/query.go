package catalog

import (
	"sort"
	"strings"
)

// BannerFilter narrows a banner listing.
type BannerFilter struct {
	// Type keeps only banners of this type when non-empty.
	Type string
	// IncludeInactive keeps banners with IsActive false.
	IncludeInactive bool
}

// ListBanners returns matching banners ordered by SortOrder.
func (f *Fixtures) ListBanners(filter BannerFilter) []Banner {
	kind := strings.ToLower(strings.TrimSpace(filter.Type))

	out := make([]Banner, 0, len(f.Banners))
	for _, b := range f.Banners {
		if kind != "" && !strings.EqualFold(b.Type, kind) {
			continue
		}
		if !b.IsActive && !filter.IncludeInactive {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// Banner looks up a banner by id.
func (f *Fixtures) Banner(id int) (Banner, bool) {
	for _, b := range f.Banners {
		if b.ID == id {
			return b, true
		}
	}
	return Banner{}, false
}

// ServiceMenu returns the services menu ordered by SortOrder.
func (f *Fixtures) ServiceMenu() []ServiceMenuItem {
	out := append([]ServiceMenuItem(nil), f.Services...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// EmergencyMenu returns the emergency contacts ordered by SortOrder.
func (f *Fixtures) EmergencyMenu() []EmergencyContact {
	out := append([]EmergencyContact(nil), f.Emergency...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// ListCategories returns categories ordered by SortOrder. A nil parent
// returns every category; otherwise only direct children of *parent.
func (f *Fixtures) ListCategories(parent *int) []Category {
	out := make([]Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		if parent != nil && (c.ParentID == nil || *c.ParentID != *parent) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// CategoryBySlug looks up a category by its slug, case-insensitively.
func (f *Fixtures) CategoryBySlug(slug string) (Category, bool) {
	slug = strings.TrimSpace(slug)
	for _, c := range f.Categories {
		if strings.EqualFold(c.Slug, slug) {
			return c, true
		}
	}
	return Category{}, false
}
