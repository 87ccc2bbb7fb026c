package lead

import "sort"

// productCatalog is the whitelist of product categories and their subtypes.
var productCatalog = map[string][]string{
	"motor":    {"private_car", "two_wheeler", "commercial_vehicle"},
	"health":   {"individual", "family_floater", "senior_citizen", "critical_illness"},
	"life":     {"term", "endowment", "ulip"},
	"property": {"home", "shop", "fire"},
	"travel":   {"domestic", "international"},
}

var (
	statuses   = []string{"new", "contacted", "qualified", "proposal", "converted", "lost"}
	priorities = []string{"low", "medium", "high"}
)

type Category struct {
	Name     string   `json:"name"`
	Subtypes []string `json:"subtypes"`
}

type Catalog struct {
	Categories []Category `json:"categories"`
	Statuses   []string   `json:"statuses"`
	Priorities []string   `json:"priorities"`
}

func catalog() Catalog {
	names := make([]string, 0, len(productCatalog))
	for name := range productCatalog {
		names = append(names, name)
	}
	sort.Strings(names)

	c := Catalog{Statuses: statuses, Priorities: priorities}
	for _, name := range names {
		c.Categories = append(c.Categories, Category{Name: name, Subtypes: productCatalog[name]})
	}
	return c
}

// validateProduct returns field errors for a category/subtype pair. Both may
// be empty; a subtype requires a category and must belong to it.
func validateProduct(category, subtype string) map[string]string {
	if category == "" {
		if subtype != "" {
			return map[string]string{"productCategory": "is required when productSubtype is set"}
		}
		return nil
	}
	subtypes, ok := productCatalog[category]
	if !ok {
		return map[string]string{"productCategory": "is not a known product category"}
	}
	if subtype == "" {
		return nil
	}
	for _, s := range subtypes {
		if s == subtype {
			return nil
		}
	}
	return map[string]string{"productSubtype": "is not valid for category " + category}
}
