package product

import "github.com/angelmondragon/attire-backend/pkg/pagination"

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	Category     string
	NewArrival   *bool
	Featured     *bool
	SpecialOffer *bool
	Query        string
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}
