package catalog

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bannerIDs(banners []Banner) []int {
	ids := make([]int, 0, len(banners))
	for _, b := range banners {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestListBannersFilters(t *testing.T) {
	f := DefaultFixtures()

	tests := []struct {
		name   string
		filter BannerFilter
		want   []int
	}{
		{name: "active only by default", filter: BannerFilter{}, want: []int{1, 3, 5, 6, 2}},
		{name: "type filter", filter: BannerFilter{Type: "hero"}, want: []int{1, 2}},
		{name: "type is case insensitive", filter: BannerFilter{Type: " PROMO "}, want: []int{3}},
		{name: "include inactive", filter: BannerFilter{Type: "promo", IncludeInactive: true}, want: []int{3, 4}},
		{name: "unknown type", filter: BannerFilter{Type: "popup"}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bannerIDs(f.ListBanners(tt.filter)))
		})
	}
}

func TestBannerLookup(t *testing.T) {
	f := DefaultFixtures()

	b, ok := f.Banner(4)
	require.True(t, ok)
	require.False(t, b.IsActive)

	_, ok = f.Banner(999)
	require.False(t, ok)
}

func TestMenusAreSorted(t *testing.T) {
	f := &Fixtures{
		Services:  []ServiceMenuItem{{ID: 1, SortOrder: 3}, {ID: 2, SortOrder: 1}},
		Emergency: []EmergencyContact{{ID: 1, SortOrder: 2}, {ID: 2, SortOrder: 1}},
	}

	services := f.ServiceMenu()
	require.Equal(t, 2, services[0].ID)
	require.Equal(t, 1, f.Services[0].ID, "source slice must not be reordered")

	emergency := f.EmergencyMenu()
	require.Equal(t, 2, emergency[0].ID)
}

func TestListCategoriesByParent(t *testing.T) {
	f := DefaultFixtures()

	all := f.ListCategories(nil)
	require.Len(t, all, len(f.Categories))

	parent := 1
	children := f.ListCategories(&parent)
	require.Len(t, children, 2)
	require.Equal(t, "pain-relief", children[0].Slug)
	require.Equal(t, "cold-flu", children[1].Slug)

	missing := 42
	require.Empty(t, f.ListCategories(&missing))
}

func TestCategoryBySlug(t *testing.T) {
	f := DefaultFixtures()

	c, ok := f.CategoryBySlug("Skin-Care")
	require.True(t, ok)
	require.NotNil(t, c.ParentID)
	require.Equal(t, 5, *c.ParentID)

	_, ok = f.CategoryBySlug("nope")
	require.False(t, ok)
}

func TestDefaultFixturesAreValid(t *testing.T) {
	require.NoError(t, DefaultFixtures().Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	f := &Fixtures{
		Banners: []Banner{{ID: 1, Title: "a"}, {ID: 1, Title: " "}},
		Categories: []Category{
			{ID: 1, Slug: "x"},
			{ID: 2, Slug: "X"},
			{ID: 3, Slug: "y", ParentID: intPtr(9)},
		},
	}

	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate banner id 1")
	assert.Contains(t, err.Error(), "banner 1: title is required")
	assert.Contains(t, err.Error(), `duplicate category slug "X"`)
	assert.Contains(t, err.Error(), "unknown parent 9")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("banners:\n  - id: 1\n    title: x\n    colour: red\n"))
	require.Error(t, err)
}

func TestEncodeDecodeDefaultFixtures(t *testing.T) {
	data, err := Encode(DefaultFixtures())
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, DefaultFixtures(), decoded)
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource()
	require.Equal(t, SourceStatic, src.Name())
	require.NotEmpty(t, src.Fixtures().Banners)
}

func writeFixtures(t *testing.T, path string, f *Fixtures) {
	t.Helper()
	data, err := Encode(f)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFileSourceReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFixtures(t, path, DefaultFixtures())

	var reloads atomic.Int32
	src, err := NewFileSource(path, WithReloadHook(func(*Fixtures) { reloads.Add(1) }))
	require.NoError(t, err)
	require.Equal(t, SourceFile, src.Name())
	require.Len(t, src.Fixtures().Banners, 6)

	updated := DefaultFixtures()
	updated.Banners = updated.Banners[:1]
	writeFixtures(t, path, updated)

	require.NoError(t, src.Reload())
	require.Len(t, src.Fixtures().Banners, 1)
	require.EqualValues(t, 1, reloads.Load())

	require.NoError(t, os.WriteFile(path, []byte("banners: [oops"), 0o644))
	require.Error(t, src.Reload())
	require.Len(t, src.Fixtures().Banners, 1, "previous fixtures stay in place")
	require.EqualValues(t, 1, reloads.Load())
}

func TestFileSourceWatchesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFixtures(t, path, DefaultFixtures())

	src, err := NewFileSource(path)
	require.NoError(t, err)
	require.NoError(t, src.Start())
	require.NoError(t, src.Start())
	t.Cleanup(func() { _ = src.Stop() })

	updated := DefaultFixtures()
	updated.Categories = updated.Categories[:1]
	writeFixtures(t, path, updated)

	require.Eventually(t, func() bool {
		return len(src.Fixtures().Categories) == 1
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, src.Stop())
	require.NoError(t, src.Stop())
}
