package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-backend/api/controllers"
	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/attributes"
	"github.com/angelmondragon/catalog-backend/internal/categories"
	"github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/internal/variants"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// Deps bundles everything the router needs.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Cache   redis.Pinger
	Metrics *metrics.HTTPMetrics
	// Registry, when set, is served at /metrics.
	Registry *prometheus.Registry

	Categories categories.Service
	Products   products.Service
	Variants   variants.Service
	Attributes attributes.Service
}

// NewRouter builds the HTTP surface: anonymous catalog reads, staff writes,
// and admin deletes.
func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Cache))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/tree", controllers.CategoryTree(deps.Categories, logg))
			r.Get("/{slug}", controllers.CategoryBySlug(deps.Categories, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{slug}", controllers.ProductBySlug(deps.Products, logg))
		})
		r.Get("/attributes", controllers.AttributeList(deps.Attributes, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireWrite(logg))

			r.Post("/categories", controllers.CategoryCreate(deps.Categories, logg))
			r.Patch("/categories/{categoryId}", controllers.CategoryUpdate(deps.Categories, logg))

			r.Post("/products", controllers.ProductCreate(deps.Products, logg))
			r.Post("/products/bulk", controllers.ProductBulkUpdate(deps.Products, logg))
			r.Patch("/products/{productId}", controllers.ProductUpdate(deps.Products, logg))

			r.Post("/products/{productId}/images", controllers.ProductImageAdd(deps.Products, logg))
			r.Post("/products/{productId}/images/reorder", controllers.ProductImageReorder(deps.Products, logg))
			r.Patch("/images/{imageId}", controllers.ProductImageUpdate(deps.Products, logg))

			r.Post("/products/{productId}/variants", controllers.VariantCreate(deps.Variants, logg))
			r.Get("/variants/low-stock", controllers.VariantLowStock(deps.Variants, logg))
			r.Post("/variants/stock/bulk", controllers.VariantBulkStock(deps.Variants, logg))
			r.Get("/variants/{variantId}", controllers.VariantGet(deps.Variants, logg))
			r.Patch("/variants/{variantId}", controllers.VariantUpdate(deps.Variants, logg))
			r.Post("/variants/{variantId}/stock", controllers.VariantStockUpdate(deps.Variants, logg))

			r.Post("/attributes", controllers.AttributeCreate(deps.Attributes, logg))
			r.Post("/attributes/{attributeId}/values", controllers.AttributeValueCreate(deps.Attributes, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireDelete(logg))

			r.Delete("/categories/{categoryId}", controllers.CategoryDelete(deps.Categories, logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(deps.Products, logg))
			r.Delete("/variants/{variantId}", controllers.VariantDelete(deps.Variants, logg))
			r.Delete("/images/{imageId}", controllers.ProductImageDelete(deps.Products, logg))
		})
	})

	return r
}
