package sqlboiler_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/sqlboiler"
)

var _ = Describe("OffsetToQueryMods", func() {
	d := sqlboiler.DefaultDialect

	Describe("Basic Functionality", func() {
		It("should return empty mods for an empty query", func() {
			mods := sqlboiler.OffsetToQueryMods(datasource.Query{}, d)

			Expect(mods).To(HaveLen(0))
		})

		It("should add OFFSET mod", func() {
			mods := sqlboiler.OffsetToQueryMods(datasource.Query{Offset: 20}, d)

			Expect(mods).To(HaveLen(1))
			Expect(modTypeName(mods[0])).To(Equal("qm.offsetQueryMod"))
		})

		It("should add LIMIT mod", func() {
			mods := sqlboiler.OffsetToQueryMods(datasource.Query{Limit: 10}, d)

			Expect(mods).To(HaveLen(1))
			Expect(modTypeName(mods[0])).To(Equal("qm.limitQueryMod"))
		})

		It("should combine all mods together", func() {
			q := datasource.Query{
				Offset: 20,
				Limit:  10,
				Orderings: []datasource.Ordering{
					{Field: "created", Column: "created_at", Desc: true},
					{Field: "id", Column: "id"},
				},
			}

			mods := sqlboiler.OffsetToQueryMods(q, d)

			Expect(mods).To(HaveLen(3))
			Expect(modTypeName(mods[0])).To(Equal("qm.offsetQueryMod"))
			Expect(modTypeName(mods[1])).To(Equal("qm.limitQueryMod"))
			Expect(modTypeName(mods[2])).To(Equal("qm.orderByQueryMod"))
		})

		It("should ignore conditions", func() {
			q := datasource.Query{
				Limit:      10,
				Conditions: []datasource.Condition{{Field: "title", Column: "title", Comparison: datasource.Eq, Value: "x"}},
			}

			Expect(sqlboiler.OffsetToQueryMods(q, d)).To(HaveLen(1))
		})
	})

	Describe("ORDER BY Clause Formatting", func() {
		It("should quote columns and mark descending ones", func() {
			q := datasource.Query{
				Orderings: []datasource.Ordering{
					{Column: "created_at", Desc: true},
					{Column: "name"},
					{Column: "id", Desc: true},
				},
			}

			query, _ := buildSQL(sqlboiler.SQLiteDialect, sqlboiler.OffsetToQueryMods(q, sqlboiler.SQLiteDialect)...)

			Expect(query).To(ContainSubstring(`ORDER BY "created_at" DESC, "name", "id" DESC`))
		})

		It("should order NULLs first for PostgreSQL", func() {
			q := datasource.Query{
				Orderings: []datasource.Ordering{
					{Column: "created_at", Desc: true},
					{Column: "name"},
				},
			}

			query, _ := buildSQL(sqlboiler.PostgresDialect, sqlboiler.OffsetToQueryMods(q, sqlboiler.PostgresDialect)...)

			Expect(query).To(ContainSubstring(`ORDER BY "created_at" DESC NULLS LAST, "name" NULLS FIRST`))
		})

		It("should use the dialect quotes", func() {
			mysql := sqlboiler.Dialect{LQ: '`', RQ: '`'}
			q := datasource.Query{Orderings: []datasource.Ordering{{Column: "name"}}}

			query, _ := buildSQL(mysql, sqlboiler.OffsetToQueryMods(q, mysql)...)

			Expect(query).To(ContainSubstring("ORDER BY `name`"))
		})
	})

	Describe("Typical Pagination Scenarios", func() {
		It("should handle first page (offset=0)", func() {
			q := datasource.Query{Limit: 10, Orderings: []datasource.Ordering{{Column: "created_at", Desc: true}}}

			// First page: no OFFSET, only LIMIT and ORDER BY
			Expect(sqlboiler.OffsetToQueryMods(q, d)).To(HaveLen(2))
		})

		It("should handle second page (offset=10)", func() {
			q := datasource.Query{Offset: 10, Limit: 10, Orderings: []datasource.Ordering{{Column: "created_at", Desc: true}}}

			Expect(sqlboiler.OffsetToQueryMods(q, d)).To(HaveLen(3))
		})

		It("should render LIMIT and OFFSET", func() {
			q := datasource.Query{Offset: 1000, Limit: 50}

			query, _ := buildSQL(sqlboiler.SQLiteDialect, sqlboiler.OffsetToQueryMods(q, sqlboiler.SQLiteDialect)...)

			Expect(query).To(ContainSubstring("LIMIT 50"))
			Expect(query).To(ContainSubstring("OFFSET 1000"))
		})
	})
})
