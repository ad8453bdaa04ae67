package sqlboiler

import (
	"strings"

	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/offset"
)

// OffsetToQueryMods converts the paging and ordering part of a query into
// SQLBoiler query mods.
//
// The conversion follows these rules:
//   - Offset → qm.Offset(n)
//   - Limit → qm.Limit(n)
//   - Orderings → qm.OrderBy(`"col1" DESC, "col2"`), with NULLS FIRST/LAST
//     when the dialect asks for it
//
// Example:
//
//	mods := sqlboiler.OffsetToQueryMods(q, sqlboiler.DefaultDialect)
//	news, err := models.News(mods...).All(ctx, db)
func OffsetToQueryMods(q datasource.Query, d Dialect) []qm.QueryMod {
	mods := offset.FromOffset(q.Offset, q.Limit).QueryMods()

	if len(q.Orderings) > 0 {
		mods = append(mods, qm.OrderBy(buildOrderByClause(q.Orderings, d)))
	}

	return mods
}

// buildOrderByClause constructs an ORDER BY clause from orderings.
// Assumes len(orderings) > 0 (caller must verify).
//
// Example:
//
//	[]datasource.Ordering{
//	    {Column: "created_at", Desc: true},
//	    {Column: "id", Desc: false},
//	}
//	→ `"created_at" DESC, "id"`
func buildOrderByClause(orderings []datasource.Ordering, d Dialect) string {
	parts := make([]string, len(orderings))
	for i, o := range orderings {
		parts[i] = d.quote(o.Column)
		switch {
		case o.Desc && d.NullsFirst:
			parts[i] += " DESC NULLS LAST"
		case o.Desc:
			parts[i] += " DESC"
		case d.NullsFirst:
			parts[i] += " NULLS FIRST"
		}
	}
	return strings.Join(parts, ", ")
}
