package enums

// ProductSortField selects the column product listings are ordered by.
type ProductSortField string

const (
	ProductSortCreatedAt ProductSortField = "created_at"
	ProductSortPrice     ProductSortField = "price"
	ProductSortName      ProductSortField = "name"
)

// IsValid reports whether the value is a known ProductSortField.
func (f ProductSortField) IsValid() bool {
	switch f {
	case ProductSortCreatedAt, ProductSortPrice, ProductSortName:
		return true
	}
	return false
}

// SortOrder is the listing direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid reports whether the value is a known SortOrder.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}
