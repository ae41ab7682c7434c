// Package catalog holds the pure list logic: the filter predicate and the
// pipeline that merges locally added and remotely fetched products.
package catalog

import (
	"strings"

	"product-catalog/internal/model"
)

// Matches reports whether p passes the search term and price bucket.
// The search term matches the title case-insensitively as a substring; an
// empty term matches everything. Both checks must pass.
func Matches(p model.Product, search string, bucket model.PriceBucket) bool {
	if search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
		return false
	}
	return inBucket(p.Price, bucket)
}

func inBucket(price float64, bucket model.PriceBucket) bool {
	switch bucket {
	case model.BucketBelow50:
		return price < 50
	case model.Bucket50To100:
		return price >= 50 && price <= 100
	case model.BucketAbove100:
		return price > 100
	default:
		return true
	}
}
