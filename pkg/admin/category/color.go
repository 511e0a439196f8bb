package category

import "hash/fnv"

// Palette holds the badge colors handed to the UI for category chips.
var Palette = []string{
	"#2563eb", "#16a34a", "#d97706", "#dc2626", "#7c3aed",
	"#0891b2", "#db2777", "#65a30d", "#ea580c", "#4f46e5",
}

// Color maps a category name to a palette entry. Stable for a given name.
func Color(name string) string {
	if name == "" {
		return Palette[0]
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return Palette[h.Sum32()%uint32(len(Palette))]
}
