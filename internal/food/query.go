package food

import "fmt"

// Sort directions accepted on listing queries. Anything else leaves the
// result order unspecified.
const (
	SortAsc  = "asc"
	SortDesc = "dsc"
)

// ListingFilter translates externally supplied query parameters into a SQL
// filter and sort order. It performs no store access so it can be tested in
// isolation.
type ListingFilter struct {
	AvailableOnly bool
	Search        string
	Sort          string
}

// SQL renders the filter as a WHERE fragment with positional args and an
// ORDER BY fragment. Both fragments are empty when nothing applies;
// conditions combine with AND.
func (f ListingFilter) SQL() (where string, args []any, orderBy string) {
	clauses := []string{}
	if f.AvailableOnly {
		args = append(args, StatusAvailable)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		clauses = append(clauses, fmt.Sprintf("food_name ILIKE $%d", len(args)))
	}
	if len(clauses) > 0 {
		where = " WHERE " + clauses[0]
		for _, c := range clauses[1:] {
			where += " AND " + c
		}
	}

	switch f.Sort {
	case SortAsc:
		orderBy = " ORDER BY expire_date ASC"
	case SortDesc:
		orderBy = " ORDER BY expire_date DESC"
	}
	return where, args, orderBy
}
