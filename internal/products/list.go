package products

import (
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
// All filters are optional and conjunctive.
type ListFilters struct {
	CategorySlug      string
	PriceMinCents     *int64
	PriceMaxCents     *int64
	FeaturedOnly      bool
	InStockOnly       bool
	AttributeValueIDs []uuid.UUID
	Query             string
}

// ListInput captures the inputs needed to paginate, filter, and sort the
// product listing.
type ListInput struct {
	Filters    ListFilters
	SortField  enums.ProductSortField
	SortOrder  enums.SortOrder
	Pagination pagination.Params
}
