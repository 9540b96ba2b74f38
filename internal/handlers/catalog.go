package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/catalog"
	appErrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/response"
)

// CatalogHandler serves the read-only storefront fixtures.
type CatalogHandler struct {
	source catalog.Source
}

// NewCatalogHandler constructs a handler over source.
func NewCatalogHandler(source catalog.Source) *CatalogHandler {
	return &CatalogHandler{source: source}
}

func (h *CatalogHandler) fixtures() *catalog.Fixtures {
	if f := h.source.Fixtures(); f != nil {
		return f
	}
	return &catalog.Fixtures{}
}

// GET /api/banners
func (h *CatalogHandler) ListBanners(c *gin.Context) {
	banners := h.fixtures().ListBanners(catalog.BannerFilter{
		Type:            c.Query("type"),
		IncludeInactive: parseBoolQuery(c, "include_inactive"),
	})
	response.SuccessWithMeta(c, http.StatusOK, banners, &response.Meta{Count: len(banners)})
}

// GET /api/banners/:id
func (h *CatalogHandler) GetBanner(c *gin.Context) {
	id, ok := intParam(c, "id", "banner id")
	if !ok {
		return
	}
	banner, ok := h.fixtures().Banner(id)
	if !ok {
		response.Error(c, appErrors.NewNotFound("Banner"))
		return
	}
	response.Success(c, http.StatusOK, banner)
}

// GET /api/menus/services
func (h *CatalogHandler) ServiceMenu(c *gin.Context) {
	items := h.fixtures().ServiceMenu()
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Count: len(items)})
}

// GET /api/menus/emergency
func (h *CatalogHandler) EmergencyMenu(c *gin.Context) {
	items := h.fixtures().EmergencyMenu()
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Count: len(items)})
}

// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var parent *int
	if raw := strings.TrimSpace(c.Query("parent_id")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("parent_id must be an integer"))
			return
		}
		parent = &value
	}

	categories := h.fixtures().ListCategories(parent)
	response.SuccessWithMeta(c, http.StatusOK, categories, &response.Meta{Count: len(categories)})
}

// GET /api/categories/:slug
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, ok := h.fixtures().CategoryBySlug(c.Param("slug"))
	if !ok {
		response.Error(c, appErrors.NewNotFound("Category"))
		return
	}
	response.Success(c, http.StatusOK, category)
}
