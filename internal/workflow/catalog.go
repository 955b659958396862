package workflow

import "github.com/noah-isme/school-results-api/internal/models"

var lowerSubjects = []string{
	"Mathematics",
	"English",
	"Bangla",
	"Science",
	"Social Studies",
}

var upperSubjects = []string{
	"Mathematics",
	"English",
	"Bangla",
	"Physics",
	"Chemistry",
	"Biology",
	"History",
	"Geography",
}

// Catalog returns the subjects offered to a class. Classes 9 and 10 share the
// secondary list; every other class uses the junior list.
func Catalog(class models.ClassName) []string {
	src := lowerSubjects
	if class.Upper() {
		src = upperSubjects
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func inCatalog(class models.ClassName, subject string) bool {
	for _, s := range Catalog(class) {
		if s == subject {
			return true
		}
	}
	return false
}
