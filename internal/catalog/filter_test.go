package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freshmart/storefront/internal/storeapi"
)

var sample = []storeapi.Product{
	{ID: 1, Name: "Gala Apples", CategoryID: 1},
	{ID: 2, Name: "Green APPLE juice", CategoryID: 3},
	{ID: 3, Name: "Whole Milk", CategoryID: 2},
	{ID: 4, Name: "Pineapple", CategoryID: 1},
}

func names(products []storeapi.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"everything", Criteria{}, []string{"Gala Apples", "Green APPLE juice", "Whole Milk", "Pineapple"}},
		{"all category", Criteria{Category: AllCategories}, []string{"Gala Apples", "Green APPLE juice", "Whole Milk", "Pineapple"}},
		{"case insensitive", Criteria{Query: "apple"}, []string{"Gala Apples", "Green APPLE juice", "Pineapple"}},
		{"query and category", Criteria{Query: "APPLE", Category: "1"}, []string{"Gala Apples", "Pineapple"}},
		{"category only", Criteria{Category: "2"}, []string{"Whole Milk"}},
		{"no match", Criteria{Query: "banana"}, []string{}},
		{"unknown category", Criteria{Category: "dairy"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, names(Filter(sample, tc.criteria)))
		})
	}
}

func TestFilterIsSubsetInOrder(t *testing.T) {
	got := Filter(sample, Criteria{Query: "a"})
	idx := 0
	for _, p := range got {
		for idx < len(sample) && sample[idx].ID != p.ID {
			idx++
		}
		assert.Less(t, idx, len(sample), "product %d out of order or not in input", p.ID)
	}
}
