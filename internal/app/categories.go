package app

import "github.com/footprint-tools/mach/internal/dispatchers"

// Categories are the command categories every mach declares.
var Categories = []dispatchers.Category{
	{Name: "build", Title: "Build Commands", Description: "Interact with the build system", Priority: 80},
	{Name: "post-build", Title: "Post-build Commands", Description: "Do stuff with the build output", Priority: 70},
	{Name: "testing", Title: "Testing", Description: "Run tests", Priority: 60},
	{Name: "ci", Title: "CI", Description: "Taskcluster commands", Priority: 59},
	{Name: "devenv", Title: "Development Environment", Description: "Set up and configure your development environment", Priority: 20},
	{Name: "misc", Title: "Potpourri", Description: "Potent potables and assorted snacks", Priority: 10},
}

// RegisterCategories declares Categories in r.
func RegisterCategories(r *dispatchers.Registry) {
	for _, c := range Categories {
		r.RegisterCategory(c.Name, c.Title, c.Description, c.Priority)
	}
}
