package dispatchers

import "sort"

// DefaultCategoryPriority is the priority of a category that states none.
const DefaultCategoryPriority = 50

// Category groups commands in help output. Higher priority lists first.
type Category struct {
	Name        string
	Title       string
	Description string
	Priority    int
}

func sortCategories(cats []Category) {
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Priority != cats[j].Priority {
			return cats[i].Priority > cats[j].Priority
		}
		return cats[i].Name < cats[j].Name
	})
}
