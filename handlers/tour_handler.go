package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nmgtoursjam/tours-backend/database"
	"github.com/nmgtoursjam/tours-backend/models"
)

// ListTours returns active tours with optional category/featured/search/
// price/difficulty filters, paginated and sorted.
func ListTours(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "12"))
	if limit < 1 || limit > 100 {
		limit = 12
	}

	query := database.DB.Model(&models.Tour{}).Where("is_active = ?", true)

	if categorySlug := c.Query("category"); categorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = tours.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(short_desc) LIKE ?",
			pattern, pattern, pattern)
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", v)
		}
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", v)
		}
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", strings.ToUpper(difficulty))
	}

	sort := "created_at desc"
	switch c.Query("sort") {
	case "price_asc":
		sort = "price asc"
	case "price_desc":
		sort = "price desc"
	case "title":
		sort = "title asc"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tours"})
	}

	var tours []models.Tour
	if err := query.Preload("Category").
		Order(sort).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tours).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tours"})
	}

	return c.JSON(fiber.Map{
		"tours": tours,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetTour looks a tour up by id or, failing that, by slug.
func GetTour(c *fiber.Ctx) error {
	idOrSlug := c.Params("idOrSlug")

	var tour models.Tour
	query := database.DB.Preload("Category").Where("is_active = ?", true)

	if id, err := uuid.Parse(idOrSlug); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}

	if err := query.First(&tour).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tour not found"})
	}

	return c.JSON(tour)
}

// ListCategories returns all categories with their active tour counts.
func ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := database.DB.Order("name asc").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch categories"})
	}

	type categoryWithCount struct {
		models.Category
		TourCount int64 `json:"tour_count"`
	}

	result := make([]categoryWithCount, 0, len(categories))
	for _, category := range categories {
		var count int64
		database.DB.Model(&models.Tour{}).
			Where("category_id = ? AND is_active = ?", category.ID, true).
			Count(&count)
		result = append(result, categoryWithCount{Category: category, TourCount: count})
	}

	return c.JSON(fiber.Map{"categories": result, "count": len(result)})
}
