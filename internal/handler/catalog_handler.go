package handler

import (
	"go-shop-pos/internal/repository"
	"go-shop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.CreateCategory(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to create category")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

// GET /api/v1/categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch categories"})
	}
	return c.JSON(categories)
}

// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}

	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.UpdateCategory(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to update category")
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}

	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete category")
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// POST /api/v1/subcategories
func (h *CatalogHandler) CreateSubcategory(c *fiber.Ctx) error {
	var req service.SubcategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	sub, err := h.service.CreateSubcategory(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to create subcategory")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Subcategory created", "data": sub})
}

// GET /api/v1/subcategories?category_id=
func (h *CatalogHandler) GetSubcategories(c *fiber.Ctx) error {
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		return badRequest(c, "Invalid category ID")
	}

	subs, err := h.service.ListSubcategories(c.UserContext(), categoryID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch subcategories"})
	}
	return c.JSON(subs)
}

// DELETE /api/v1/subcategories/:id
func (h *CatalogHandler) DeleteSubcategory(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid subcategory ID")
	}

	if err := h.service.DeleteSubcategory(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete subcategory")
	}
	return c.JSON(fiber.Map{"message": "Subcategory deleted"})
}

func productFilter(c *fiber.Ctx) (repository.ProductFilter, error) {
	f := repository.ProductFilter{
		Keyword: c.Query("q"),
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 0),
	}
	var err error
	if f.CategoryID, err = queryUUID(c, "category_id"); err != nil {
		return f, err
	}
	if f.SubcategoryID, err = queryUUID(c, "subcategory_id"); err != nil {
		return f, err
	}
	return f, nil
}

// GET /api/v1/products?q=&category_id=&subcategory_id=&page=&limit=
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	f, err := productFilter(c)
	if err != nil {
		return badRequest(c, "Invalid category or subcategory ID")
	}

	page, err := h.service.ListProducts(c.UserContext(), f)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(page)
}

// GET /api/v1/products/count
func (h *CatalogHandler) CountProducts(c *fiber.Ctx) error {
	f, err := productFilter(c)
	if err != nil {
		return badRequest(c, "Invalid category or subcategory ID")
	}

	total, err := h.service.CountProducts(c.UserContext(), f)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"total": total})
}

// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch product")
	}
	return c.JSON(product)
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DELETE /api/v1/products/:id
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	if err := h.service.DeleteProduct(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GET /api/v1/products/:id/movements
func (h *CatalogHandler) GetStockHistory(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	movements, err := h.service.StockHistory(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch stock history")
	}
	return c.JSON(movements)
}

// POST /api/v1/maintenance/backfill-keywords
func (h *CatalogHandler) BackfillKeywords(c *fiber.Ctx) error {
	n, err := h.service.BackfillKeywords(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Keyword backfill failed", "updated": n})
	}
	return c.JSON(fiber.Map{"message": "Keywords rebuilt", "updated": n})
}
