package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	slug, err := s.uniqueSlug(ctx, firstNonEmpty(req.Slug, req.Title))
	if err != nil {
		return nil, err
	}

	status := model.ProductStatusDraft
	if req.Status != "" {
		status = model.ProductStatus(req.Status)
	}

	product := &model.Product{
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		Status:      status,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// GetByID serves from the Redis read cache when possible. Checkout never
// goes through here; it reads stock inside its own transaction.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			product := &model.Product{}
			if json.Unmarshal([]byte(cached), product) == nil {
				return product, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return product, nil
}

// GetBySlug is the public storefront lookup: draft products stay invisible.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	if product == nil || product.Status != model.ProductStatusActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List serves the public catalog: ACTIVE products only.
func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) ([]model.Product, int, error) {
	active := model.ProductStatusActive
	params := repository.ProductListParams{
		Status:   &active,
		Search:   req.Search,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Limit:    req.Limit,
		Offset:   (req.Page - 1) * req.Limit,
	}
	return s.productRepo.List(ctx, params)
}

// AdminList sees every product regardless of status.
func (s *ProductService) AdminList(ctx context.Context, req dto.AdminListProductsRequest) ([]model.Product, int, error) {
	var status *model.ProductStatus
	if req.Status != "" {
		st := model.ProductStatus(req.Status)
		status = &st
	}
	params := repository.ProductListParams{
		Status: status,
		Search: req.Search,
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	}
	return s.productRepo.List(ctx, params)
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Slug != nil || req.Title != nil {
		base := product.Title
		if req.Slug != nil {
			base = *req.Slug
		}
		slug, err := s.uniqueSlugFor(ctx, base, product.Slug)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	product.SalePrice = req.SalePrice
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Status != nil {
		product.Status = model.ProductStatus(*req.Status)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug suffixes -2, -3, ... until the slug is free.
func (s *ProductService) uniqueSlug(ctx context.Context, base string) (string, error) {
	return s.uniqueSlugFor(ctx, base, "")
}

func (s *ProductService) uniqueSlugFor(ctx context.Context, base, current string) (string, error) {
	baseSlug := slugify(base)
	slug := baseSlug
	for attempt := 2; ; attempt++ {
		if slug == current {
			return slug, nil
		}
		exists, err := s.productRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, attempt)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
