package pagination

// DefaultPerPage is the standard page size when one is not provided.
const DefaultPerPage = 10

// PerPageChoices lists the page sizes the list endpoints accept.
var PerPageChoices = []int{5, 10, 20, 50}

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to one-based and snaps the page size to an
// accepted choice, falling back to the default for anything else.
func Normalize(params Params) Params {
	if params.Page < 1 {
		params.Page = 1
	}
	params.PerPage = normalizePerPage(params.PerPage)
	return params
}

// Offset returns the row offset for the normalized parameters.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns how many pages the given row count spans, at least one.
func TotalPages(total, perPage int) int {
	perPage = normalizePerPage(perPage)
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

func normalizePerPage(perPage int) int {
	for _, choice := range PerPageChoices {
		if perPage == choice {
			return perPage
		}
	}
	return DefaultPerPage
}
