package models

// CategoryAll is the pseudo-category meaning "no category filter".
const CategoryAll = "all"

// Category is a fixed topic tag with its display color.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Categories is the static category set, in display order.
var Categories = []Category{
	{Name: "technology", Color: "#89b4fa"},
	{Name: "science", Color: "#a6e3a1"},
	{Name: "finance", Color: "#f38ba8"},
	{Name: "society", Color: "#f9e2af"},
	{Name: "entertainment", Color: "#f5c2e7"},
	{Name: "health", Color: "#94e2d5"},
	{Name: "history", Color: "#fab387"},
	{Name: "news", Color: "#cba6f7"},
}

// CategoryByName looks a category up by its name.
func CategoryByName(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// IsCategory reports whether name belongs to the category set.
func IsCategory(name string) bool {
	_, ok := CategoryByName(name)
	return ok
}

// IsCategoryFilter reports whether name is a valid list filter:
// either CategoryAll or a category name.
func IsCategoryFilter(name string) bool {
	return name == CategoryAll || IsCategory(name)
}
