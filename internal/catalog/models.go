package catalog

// Banner types served to the storefront.
const (
	BannerHero     = "hero"
	BannerPromo    = "promo"
	BannerSidebar  = "sidebar"
	BannerCategory = "category"
)

// Banner is a marketing slot shown on the storefront.
type Banner struct {
	ID        int    `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Subtitle  string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	ImageURL  string `json:"image_url" yaml:"image_url"`
	LinkURL   string `json:"link_url,omitempty" yaml:"link_url,omitempty"`
	Type      string `json:"type" yaml:"type"`
	IsActive  bool   `json:"is_active" yaml:"is_active"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// ServiceMenuItem is an entry in the services navigation menu.
type ServiceMenuItem struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Path        string `json:"path" yaml:"path"`
	SortOrder   int    `json:"sort_order" yaml:"sort_order"`
}

// EmergencyContact is an entry in the emergency menu.
type EmergencyContact struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Phone        string `json:"phone" yaml:"phone"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon         string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Available24h bool   `json:"available_24h" yaml:"available_24h"`
	SortOrder    int    `json:"sort_order" yaml:"sort_order"`
}

// Category groups products. Top-level categories have no ParentID.
type Category struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Slug         string `json:"slug" yaml:"slug"`
	Icon         string `json:"icon,omitempty" yaml:"icon,omitempty"`
	ParentID     *int   `json:"parent_id" yaml:"parent_id,omitempty"`
	ProductCount int    `json:"product_count" yaml:"product_count"`
	SortOrder    int    `json:"sort_order" yaml:"sort_order"`
}

// Fixtures is the complete data set served by the mock catalog.
type Fixtures struct {
	Banners    []Banner           `json:"banners" yaml:"banners"`
	Services   []ServiceMenuItem  `json:"services" yaml:"services"`
	Emergency  []EmergencyContact `json:"emergency" yaml:"emergency"`
	Categories []Category         `json:"categories" yaml:"categories"`
}
