package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/freshmart/storefront/internal/storeapi"
)

// AllCategories selects every category.
const AllCategories = "all"

// Criteria narrows a product list.
type Criteria struct {
	Query    string
	Category string
}

// Filter returns the products whose name contains Query ignoring case and
// whose category id equals Category. An empty or "all" Category matches
// every product. The input order is preserved.
func Filter(products []storeapi.Product, c Criteria) []storeapi.Product {
	fold := cases.Fold()
	query := fold.String(c.Query)

	anyCategory := c.Category == "" || c.Category == AllCategories
	var categoryID int64
	if !anyCategory {
		id, err := strconv.ParseInt(c.Category, 10, 64)
		if err != nil {
			return []storeapi.Product{}
		}
		categoryID = id
	}

	out := make([]storeapi.Product, 0, len(products))
	for _, p := range products {
		if !anyCategory && p.CategoryID != categoryID {
			continue
		}
		if query != "" && !strings.Contains(fold.String(p.Name), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
