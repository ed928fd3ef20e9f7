package food

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingFilter_SQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		filter    ListingFilter
		wantWhere string
		wantArgs  []any
		wantOrder string
	}{
		{
			name:   "empty filter",
			filter: ListingFilter{},
		},
		{
			name:      "available only",
			filter:    ListingFilter{AvailableOnly: true},
			wantWhere: " WHERE status = $1",
			wantArgs:  []any{StatusAvailable},
		},
		{
			name:      "search only",
			filter:    ListingFilter{Search: "rice"},
			wantWhere: " WHERE food_name ILIKE $1",
			wantArgs:  []any{"%rice%"},
		},
		{
			name:      "available and search combine with AND",
			filter:    ListingFilter{AvailableOnly: true, Search: "Rice"},
			wantWhere: " WHERE status = $1 AND food_name ILIKE $2",
			wantArgs:  []any{StatusAvailable, "%Rice%"},
		},
		{
			name:      "sort ascending by expire date",
			filter:    ListingFilter{Sort: SortAsc},
			wantOrder: " ORDER BY expire_date ASC",
		},
		{
			name:      "sort descending by expire date",
			filter:    ListingFilter{Sort: SortDesc},
			wantOrder: " ORDER BY expire_date DESC",
		},
		{
			name:   "unknown sort makes no ordering claim",
			filter: ListingFilter{Sort: "sideways"},
		},
		{
			name:      "all parameters together",
			filter:    ListingFilter{AvailableOnly: true, Search: "bread", Sort: SortDesc},
			wantWhere: " WHERE status = $1 AND food_name ILIKE $2",
			wantArgs:  []any{StatusAvailable, "%bread%"},
			wantOrder: " ORDER BY expire_date DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args, orderBy := tt.filter.SQL()
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantOrder, orderBy)
		})
	}
}

func TestListingFilter_SearchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	// ILIKE carries the case-insensitivity; the builder must not lowercase
	// the needle itself, the store does the folding.
	where, args, _ := ListingFilter{Search: "BROWN RICE"}.SQL()
	assert.Contains(t, where, "ILIKE")
	assert.Equal(t, []any{"%BROWN RICE%"}, args)
}
