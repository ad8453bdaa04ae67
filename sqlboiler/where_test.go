package sqlboiler_test

import (
	"time"

	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/sqlboiler"
)

var _ = Describe("ConditionsToQueryMods", func() {
	d := sqlboiler.SQLiteDialect

	render := func(d sqlboiler.Dialect, conds ...datasource.Condition) (string, []any) {
		mods, err := sqlboiler.ConditionsToQueryMods(conds, d)
		Expect(err).ToNot(HaveOccurred())
		return buildSQL(d, mods...)
	}

	cond := func(column string, kind datasource.FieldKind, cmp datasource.Comparison, value any) datasource.Condition {
		return datasource.Condition{Field: column, Column: column, Kind: kind, Comparison: cmp, Value: value}
	}

	It("returns one WHERE mod per condition", func() {
		mods, err := sqlboiler.ConditionsToQueryMods([]datasource.Condition{
			cond("title", datasource.KindText, datasource.Eq, "title1"),
			cond("category", datasource.KindText, datasource.In, []any{"a", "b"}),
		}, d)

		Expect(err).ToNot(HaveOccurred())
		Expect(mods).To(HaveLen(2))
		Expect(modTypeName(mods[0])).To(whereModMatcher())
		Expect(modTypeName(mods[1])).To(whereModMatcher())
	})

	DescribeTable("plain comparisons",
		func(cmp datasource.Comparison, op string) {
			query, args := render(d, cond("views", datasource.KindNumber, cmp, 10.0))

			Expect(query).To(ContainSubstring(`"views" ` + op + ` ?`))
			Expect(args).To(Equal([]any{10.0}))
		},
		Entry("eq", datasource.Eq, "="),
		Entry("neq", datasource.Neq, "<>"),
		Entry("lt", datasource.Lt, "<"),
		Entry("lte", datasource.Lte, "<="),
		Entry("gt", datasource.Gt, ">"),
		Entry("gte", datasource.Gte, ">="),
	)

	It("expands in lists", func() {
		query, args := render(d, cond("category", datasource.KindText, datasource.In, []any{"a", "b", "c"}))

		Expect(query).To(ContainSubstring(`"category" IN (`))
		Expect(args).To(Equal([]any{"a", "b", "c"}))
	})

	It("matches contains case-insensitively with LIKE wildcards escaped", func() {
		query, args := render(d, cond("title", datasource.KindText, datasource.Contains, `50%_Off\`))

		Expect(query).To(ContainSubstring(`LOWER("title") LIKE ? ESCAPE '\'`))
		Expect(args).To(Equal([]any{`%50\%\_off\\%`}))
	})

	It("renders open and closed ranges", func() {
		query, args := render(d,
			cond("views", datasource.KindNumber, datasource.Between, datasource.Range{From: 1.0, To: 5.0}),
			cond("score", datasource.KindNumber, datasource.Between, datasource.Range{From: 2.0}),
			cond("rank", datasource.KindNumber, datasource.Between, datasource.Range{To: 3.0}),
		)

		Expect(query).To(ContainSubstring(`"views" >= ? AND "views" <= ?`))
		Expect(query).To(ContainSubstring(`"score" >= ?`))
		Expect(query).To(ContainSubstring(`"rank" <= ?`))
		Expect(args).To(Equal([]any{1.0, 5.0, 2.0, 3.0}))
	})

	It("renders null checks", func() {
		query, args := render(d,
			cond("editor_note", datasource.KindText, datasource.IsNull, true),
			cond("author", datasource.KindText, datasource.IsNull, false),
		)

		Expect(query).To(ContainSubstring(`"editor_note" IS NULL`))
		Expect(query).To(ContainSubstring(`"author" IS NOT NULL`))
		Expect(args).To(BeEmpty())
	})

	Describe("temporal values", func() {
		day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

		It("matches a whole day for date equality", func() {
			query, args := render(d, cond("create_date", datasource.KindDate, datasource.Eq, day))

			Expect(query).To(ContainSubstring(`"create_date" >= ? AND "create_date" < ?`))
			Expect(args).To(Equal([]any{"2024-03-05", "2024-03-06"}))
		})

		It("excludes a whole day for date inequality", func() {
			query, args := render(d, cond("create_date", datasource.KindDate, datasource.Neq, day))

			Expect(query).To(ContainSubstring(`("create_date" < ? OR "create_date" >= ?)`))
			Expect(args).To(Equal([]any{"2024-03-05", "2024-03-06"}))
		})

		It("includes the upper day of date ranges", func() {
			query, args := render(d, cond("create_date", datasource.KindDate, datasource.Between,
				datasource.Range{From: day, To: day.AddDate(0, 0, 2)}))

			Expect(query).To(ContainSubstring(`"create_date" >= ? AND "create_date" < ?`))
			Expect(args).To(Equal([]any{"2024-03-05", "2024-03-08"}))
		})

		It("moves lte and gt to the next day", func() {
			query, args := render(d,
				cond("a", datasource.KindDate, datasource.Lte, day),
				cond("b", datasource.KindDate, datasource.Gt, day),
			)

			Expect(query).To(ContainSubstring(`"a" < ?`))
			Expect(query).To(ContainSubstring(`"b" >= ?`))
			Expect(args).To(Equal([]any{"2024-03-06", "2024-03-06"}))
		})

		It("formats times as clock readings", func() {
			clock := time.Date(0, time.January, 1, 13, 30, 0, 0, time.UTC)

			_, args := render(d, cond("create_time", datasource.KindTime, datasource.Gte, clock))

			Expect(args).To(Equal([]any{"13:30:00"}))
		})

		It("formats datetimes with the dialect time format", func() {
			at := time.Date(2024, time.March, 5, 10, 15, 0, 0, time.UTC)

			_, sqliteArgs := render(d, cond("created_at", datasource.KindDateTime, datasource.Lt, at))
			_, pgArgs := render(sqlboiler.PostgresDialect, cond("created_at", datasource.KindDateTime, datasource.Lt, at))

			Expect(sqliteArgs).To(Equal([]any{"2024-03-05 10:15:00"}))
			Expect(pgArgs).To(Equal([]any{at}))
		})
	})

	It("numbers placeholders for PostgreSQL", func() {
		query, _ := render(sqlboiler.PostgresDialect,
			cond("title", datasource.KindText, datasource.Eq, "a"),
			cond("views", datasource.KindNumber, datasource.Gt, 1.0),
		)

		Expect(query).To(ContainSubstring(`"title" = $1`))
		Expect(query).To(ContainSubstring(`"views" > $2`))
	})

	It("rejects unknown comparisons", func() {
		_, err := sqlboiler.ConditionsToQueryMods([]datasource.Condition{
			cond("title", datasource.KindText, "like", "a"),
		}, d)

		Expect(errors.Is(err, datasource.ErrUnsupportedComparison)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`field "title"`))
	})

	It("rejects values of the wrong shape", func() {
		_, err := sqlboiler.ConditionsToQueryMods([]datasource.Condition{
			cond("category", datasource.KindText, datasource.In, "a"),
		}, d)

		Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
	})
})
