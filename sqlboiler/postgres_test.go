//go:build integration

package sqlboiler_test

import (
	"context"
	"time"

	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/sqlboiler"
)

var _ = Describe("PostgreSQL integration", Ordered, func() {
	var (
		ctx       context.Context
		container *Container
		base      time.Time
		ds        *datasource.DataSource
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		container, err = SetupPostgres(ctx)
		Expect(err).ToNot(HaveOccurred())
		GinkgoWriter.Printf("PostgreSQL container started: %s\n", container.ConnStr)

		DeferCleanup(func() {
			Expect(container.Terminate(ctx)).To(Succeed())
		})
	})

	BeforeEach(func() {
		Expect(CleanupTables(ctx, container.DB)).To(Succeed())
		base = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
		Expect(SeedUsers(ctx, container.DB, 30, base)).To(Succeed())

		manager, err := datasource.NewDriverFactoryManager(sqlboiler.NewFactory[*User](container.DB,
			sqlboiler.WithDialect(sqlboiler.PostgresDialect),
			sqlboiler.WithExtensions(sqlboiler.NewCoreExtension()),
		))
		Expect(err).ToNot(HaveOccurred())
		factory, err := datasource.NewFactory(manager, nil)
		Expect(err).ToNot(HaveOccurred())

		ds, err = factory.CreateDataSource(sqlboiler.DriverType, datasource.Options{sqlboiler.OptionTable: "users"}, "users")
		Expect(err).ToNot(HaveOccurred())

		Expect(ds.AddField("email", "text", datasource.Contains, nil)).To(Succeed())
		Expect(ds.AddField("age", "number", datasource.Between, nil)).To(Succeed())
		Expect(ds.AddField("unknownAge", "number", datasource.IsNull, datasource.Options{
			datasource.OptionField: "age",
		})).To(Succeed())
		Expect(ds.AddField("active", "boolean", datasource.Eq, datasource.Options{
			datasource.OptionField: "is_active",
		})).To(Succeed())
		Expect(ds.AddField("birthday", "date", datasource.Lte, nil)).To(Succeed())
		Expect(ds.AddField("created", "datetime", datasource.Gte, datasource.Options{
			datasource.OptionField:       "created_at",
			datasource.OptionDefaultSort: datasource.SortDesc,
		})).To(Succeed())
	})

	bind := func(params map[string]any) {
		Expect(ds.BindParameters(ctx, datasource.Parameters{"users": params})).To(Succeed())
	}

	users := func() ([]*User, int64) {
		result, err := ds.Result(ctx)
		Expect(err).ToNot(HaveOccurred())
		items, ok := datasource.Items[*User](result)
		Expect(ok).To(BeTrue())
		return items, result.TotalCount()
	}

	It("pages with the default sort", func() {
		bind(map[string]any{"maxResults": 10, "page": 1})

		page, total := users()

		Expect(total).To(Equal(int64(30)))
		Expect(page).To(HaveLen(10))
		Expect(page[0].Email).To(Equal("user30@example.com"))
		Expect(page[9].Email).To(Equal("user21@example.com"))
	})

	It("reaches the last page", func() {
		bind(map[string]any{"maxResults": 7, "page": 5})

		page, total := users()

		Expect(total).To(Equal(int64(30)))
		Expect(page).To(HaveLen(2))

		view, err := ds.CreateView(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(view.Pagination.PageCount).To(Equal(5))
		Expect(view.Pagination.HasNextPage).To(BeFalse())
	})

	It("filters with every core field type", func() {
		bind(map[string]any{
			"fields": map[string]any{
				"email":    "USER2",
				"age":      map[string]any{"from": 30, "to": 50},
				"active":   true,
				"birthday": "2000-01-25",
				"created":  base.Add(-10 * time.Hour).Format(time.RFC3339),
			},
			"sort": "age:asc",
		})

		page, total := users()

		// user21..user29 match the email, age and creation time. Inactive
		// users and those born after January 25th drop out.
		Expect(total).To(Equal(int64(3)))
		Expect(page[0].Email).To(Equal("user22@example.com"))
		Expect(page[0].Age.Int).To(Equal(41))
	})

	It("finds rows with unknown values", func() {
		bind(map[string]any{"fields": map[string]any{"unknownAge": true}})

		page, total := users()

		Expect(total).To(Equal(int64(3)))
		for _, u := range page {
			Expect(u.Age.Valid).To(BeFalse())
		}
	})

	Describe("SQL Injection Protection", func() {
		It("passes filter values as arguments", func() {
			for _, malicious := range []string{
				"'; DROP TABLE users; --",
				"1' OR '1'='1",
				`%' OR 1=1 --`,
			} {
				bind(map[string]any{"fields": map[string]any{"email": malicious}})

				_, total := users()
				Expect(total).To(BeZero())
			}

			bind(map[string]any{})
			_, total := users()
			Expect(total).To(Equal(int64(30)))
		})

		It("rejects sorting by unregistered names", func() {
			err := ds.BindParameters(ctx, datasource.Parameters{"users": map[string]any{
				"sort": "email; DROP TABLE users:asc",
			}})

			var verrs datasource.ValidationErrors
			Expect(errors.As(err, &verrs)).To(BeTrue())
			Expect(errors.Is(err, datasource.ErrUnknownField)).To(BeTrue())
		})
	})
})
