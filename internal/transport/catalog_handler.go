package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront-api/internal/domain"
	"storefront-api/internal/middleware"
	"storefront-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BrandRequest represents a brand create or update payload
type BrandRequest struct {
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug" validate:"required"`
	LogoURL  string `json:"logo_url"`
	IsActive *bool  `json:"is_active"`
}

// CategoryRequest represents a category create or update payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// ProductRequest represents a product create or update payload. Prices are
// decimal strings, matching what the database stores.
type ProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	Slug          string  `json:"slug" validate:"required"`
	Description   string  `json:"description"`
	Price         string  `json:"price" validate:"required,numeric"`
	OriginalPrice *string `json:"original_price" validate:"omitempty,numeric"`
	BrandID       *string `json:"brand_id" validate:"omitempty,uuid"`
	CategoryID    string  `json:"category_id" validate:"required,uuid"`
	ImageURL      string  `json:"image_url"`
	Stock         int     `json:"stock" validate:"min=0"`
	IsActive      *bool   `json:"is_active"`
}

// VariantRequest represents a product variant create payload
type VariantRequest struct {
	Size     string  `json:"size"`
	Color    string  `json:"color"`
	ColorHex string  `json:"color_hex"`
	Price    *string `json:"price" validate:"omitempty,numeric"`
	Stock    int     `json:"stock" validate:"min=0"`
}

// ProductListResponse is a paginated product listing
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ProductDetailResponse is a product together with its variants
type ProductDetailResponse struct {
	Product  *domain.Product          `json:"product"`
	Variants []*domain.ProductVariant `json:"variants"`
}

// CatalogHandler handles HTTP requests for brands, categories and products
type CatalogHandler struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
	logger     *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		categories: categories,
		brands:     brands,
		logger:     logger,
	}
}

// RegisterRoutes registers the public catalog reads and the admin CRUD routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, adminMiddlewares ...func(http.Handler) http.Handler) {
	r.Get("/api/brands", h.ListBrands)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/search", h.SearchProducts)
	r.Get("/api/products/{slug}", h.GetProduct)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminMiddlewares...)

		r.Post("/brands", h.CreateBrand)
		r.Put("/brands/{id}", h.UpdateBrand)
		r.Delete("/brands/{id}", h.DeleteBrand)

		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Post("/products/{id}/variants", h.CreateVariant)
		r.Delete("/variants/{id}", h.DeleteVariant)
	})
}

// ListBrands returns all brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list brands", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

// ListCategories returns all categories ordered for display
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// ListProducts returns a paginated, optionally filtered and sorted listing
// of active products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var categoryID *uuid.UUID
	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	page, pageSize := pagination(q.Get("page"), q.Get("page_size"))

	sortOrder := repository.SortOrderAsc
	if strings.EqualFold(q.Get("sort_order"), "desc") {
		sortOrder = repository.SortOrderDesc
	}

	products, total, err := h.products.List(r.Context(), categoryID, page, pageSize, q.Get("sort_by"), sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// SearchProducts returns active products matching the query text
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "q is required")
		return
	}

	page, pageSize := pagination(r.URL.Query().Get("page"), r.URL.Query().Get("page_size"))

	products, total, err := h.products.Search(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Product search failed", zap.String("query", query), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "search failed")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct returns one product by slug together with its variants
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.products.FindBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	variants, err := h.products.ListVariants(r.Context(), product.ID)
	if err != nil {
		h.logger.Error("Failed to list variants", zap.String("product_id", product.ID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductDetailResponse{
		Product:  product,
		Variants: variants,
	})
}

// CreateBrand handles brand creation
func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req BrandRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	brand := &domain.Brand{
		ID:       uuid.New(),
		Name:     req.Name,
		Slug:     req.Slug,
		LogoURL:  req.LogoURL,
		IsActive: boolOrDefault(req.IsActive, true),
	}

	if err := h.brands.Create(r.Context(), brand); err != nil {
		if errors.Is(err, repository.ErrBrandAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "brand with this slug already exists")
			return
		}
		h.logger.Error("Failed to create brand", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, brand)
}

// UpdateBrand handles brand updates
func (h *CatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	var req BrandRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	brand := &domain.Brand{
		ID:       id,
		Name:     req.Name,
		Slug:     req.Slug,
		LogoURL:  req.LogoURL,
		IsActive: boolOrDefault(req.IsActive, true),
	}

	if err := h.brands.Update(r.Context(), brand); err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "brand not found")
			return
		}
		h.logger.Error("Failed to update brand", zap.String("brand_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

// DeleteBrand removes a brand
func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	if err := h.brands.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrBrandNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "brand not found")
			return
		}
		h.logger.Error("Failed to delete brand", zap.String("brand_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "brand deleted"})
}

// CreateCategory handles category creation
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	category := &domain.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    boolOrDefault(req.IsActive, true),
	}

	if err := h.categories.Create(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category with this slug already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory handles category updates
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	category := &domain.Category{
		ID:          id,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    boolOrDefault(req.IsActive, true),
	}

	if err := h.categories.Update(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to update category", zap.String("category_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.String("category_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// CreateProduct handles product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	product, err := h.productFromRequest(uuid.New(), &req)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("slug", product.Slug))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles product updates
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	product, err := h.productFromRequest(id, &req)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Update(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product and its variants
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// CreateVariant adds a variant to a product
func (h *CatalogHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req VariantRequest
	if !decodeCatalogRequest(w, r, &req) {
		return
	}

	variant := &domain.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Size:      req.Size,
		Color:     req.Color,
		ColorHex:  req.ColorHex,
		Price:     req.Price,
		Stock:     req.Stock,
	}

	if err := h.products.CreateVariant(r.Context(), variant); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to create variant", zap.String("product_id", productID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create variant")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, variant)
}

// DeleteVariant removes one product variant
func (h *CatalogHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid variant id")
		return
	}

	if err := h.products.DeleteVariant(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "variant not found")
			return
		}
		h.logger.Error("Failed to delete variant", zap.String("variant_id", id.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete variant")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "variant deleted"})
}

func (h *CatalogHandler) productFromRequest(id uuid.UUID, req *ProductRequest) (*domain.Product, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, errors.New("invalid category_id")
	}

	var brandID *uuid.UUID
	if req.BrandID != nil {
		parsed, err := uuid.Parse(*req.BrandID)
		if err != nil {
			return nil, errors.New("invalid brand_id")
		}
		brandID = &parsed
	}

	return &domain.Product{
		ID:            id,
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		BrandID:       brandID,
		CategoryID:    categoryID,
		ImageURL:      req.ImageURL,
		Stock:         req.Stock,
		IsActive:      boolOrDefault(req.IsActive, true),
	}, nil
}

func decodeCatalogRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func boolOrDefault(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func pagination(rawPage, rawSize string) (int, int) {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(rawSize)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
