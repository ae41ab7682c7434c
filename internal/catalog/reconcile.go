package catalog

import "product-catalog/internal/model"

// BuildVisibleList filters both sources with the same predicate and returns
// the local survivors followed by the remote survivors, each in its source
// order. Records present in both sources are not deduplicated and appear
// twice. The date range in filter is not applied.
func BuildVisibleList(local, remote []model.Product, filter model.FilterState) []model.Product {
	out := make([]model.Product, 0, len(local)+len(remote))
	out = appendMatching(out, local, filter)
	return appendMatching(out, remote, filter)
}

// Split returns how many leading entries of a list built by BuildVisibleList
// came from local.
func Split(local []model.Product, filter model.FilterState) int {
	n := 0
	for _, p := range local {
		if Matches(p, filter.Search, filter.Bucket) {
			n++
		}
	}
	return n
}

func appendMatching(dst, src []model.Product, filter model.FilterState) []model.Product {
	for _, p := range src {
		if Matches(p, filter.Search, filter.Bucket) {
			dst = append(dst, p)
		}
	}
	return dst
}
