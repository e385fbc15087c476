package httpapi

import "github.com/eslsoft/myenglish/pkg/filterexpr"

// listEntriesSchema whitelists the filter fields and order keys of the
// entries list API.
var listEntriesSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"level":   {Kind: filterexpr.KindString, Ops: map[filterexpr.Op]string{filterexpr.OpEQ: "Level"}},
		"tag":     {Kind: filterexpr.KindString, Ops: map[filterexpr.Op]string{filterexpr.OpEQ: "Tag"}},
		"keyword": {Kind: filterexpr.KindString, Ops: map[filterexpr.Op]string{filterexpr.OpEQ: "Keyword"}},
	},
	Order: filterexpr.OrderSchema{
		DefaultKey:  "added_at",
		DefaultDesc: true,
		Fields: map[string]filterexpr.OrderField{
			"added_at":     {DefaultDesc: true},
			"word":         {},
			"review_count": {DefaultDesc: true},
		},
	},
}

// listRequest adapts query-string inputs to the binder's message shape.
type listRequest struct {
	filter  string
	orderBy string
}

func (r listRequest) GetFilter() string  { return r.filter }
func (r listRequest) GetOrderBy() string { return r.orderBy }
