package challenge

// Category is one of the fixed challenge categories shown on the dashboard.
type Category struct {
	Name        string
	Label       string
	Title       string
	Description string
}

// Categories lists the dashboard categories in display order.
var Categories = []Category{
	{Name: "web", Label: "Web Realms", Title: "Web Challenges", Description: "Explore the vast web realms"},
	{Name: "crypto", Label: "Cryptic Scrolls", Title: "Crypto Challenges", Description: "Decipher ancient scrolls and codes"},
	{Name: "forensics", Label: "Forensic Quests", Title: "Forensic Challenges", Description: "Investigate digital artifacts"},
	{Name: "reversing", Label: "Binary Mining", Title: "Reversing Challenges", Description: "Mine through binary defenses"},
	{Name: "osint", Label: "OSINT", Title: "OSINT Challenges", Description: "Various challenges for brave adventurers"},
}

// LookupCategory returns the category with the given name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// OverviewPath is the logical page listing every category.
const OverviewPath = "/challenges"

// ListingPath is the logical page that lists a category's challenges.
func ListingPath(category string) string {
	return "/challenges/" + category
}
