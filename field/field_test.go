package field_test

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/field"
)

var _ = Describe("Core field types", func() {
	It("registers every core type", func() {
		names := []string{}
		for _, ft := range field.Core() {
			names = append(names, ft.Type())
		}

		Expect(names).To(Equal([]string{"text", "number", "date", "time", "datetime", "boolean"}))
	})

	Describe("Text", func() {
		text := field.NewText()

		It("trims values", func() {
			v, active, err := text.Normalize(datasource.Contains, "  domain1.com ", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeTrue())
			Expect(v).To(Equal("domain1.com"))
		})

		It("treats empty strings as no filter", func() {
			_, active, err := text.Normalize(datasource.Eq, "", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeFalse())
		})

		It("splits in values from a comma separated string", func() {
			v, active, err := text.Normalize(datasource.In, "a, b,,c", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeTrue())
			Expect(v).To(Equal([]any{"a", "b", "c"}))
		})

		It("accepts in values as a slice", func() {
			v, _, err := text.Normalize(datasource.In, []string{"x", "y"}, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal([]any{"x", "y"}))
		})

		It("rejects unsupported comparisons", func() {
			_, _, err := text.Normalize(datasource.Between, "a", nil)

			Expect(errors.Is(err, datasource.ErrUnsupportedComparison)).To(BeTrue())
		})
	})

	Describe("Number", func() {
		number := field.NewNumber()

		It("coerces strings and integers to float64", func() {
			v, _, err := number.Normalize(datasource.Gt, "42", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(42.0))

			v, _, err = number.Normalize(datasource.Eq, 7, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(7.0))
		})

		It("rejects non numeric values", func() {
			_, _, err := number.Normalize(datasource.Eq, "abc", nil)

			Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
		})

		It("rejects booleans", func() {
			_, _, err := number.Normalize(datasource.Eq, true, nil)

			Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
		})

		It("builds an open ended range", func() {
			v, active, err := number.Normalize(datasource.Between, map[string]any{"from": "10"}, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeTrue())
			Expect(v).To(Equal(datasource.Range{From: 10.0}))
		})

		It("fails when from is greater than to", func() {
			_, _, err := number.Normalize(datasource.Between, []any{5, 1}, nil)

			Expect(errors.Is(err, datasource.ErrInvalidRange)).To(BeTrue())
		})

		It("treats an empty range as no filter", func() {
			_, active, err := number.Normalize(datasource.Between, map[string]any{"from": "", "to": nil}, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeFalse())
		})

		It("rejects unknown range keys", func() {
			_, _, err := number.Normalize(datasource.Between, map[string]any{"start": 1}, nil)

			Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
		})
	})

	Describe("Boolean", func() {
		boolean := field.NewBoolean()

		DescribeTable("accepted values",
			func(raw any, expected bool) {
				v, active, err := boolean.Normalize(datasource.Eq, raw, nil)

				Expect(err).ToNot(HaveOccurred())
				Expect(active).To(BeTrue())
				Expect(v).To(Equal(expected))
			},
			Entry("1", 1, true),
			Entry("0", 0, false),
			Entry("true", true, true),
			Entry("false", false, false),
			Entry(`"1"`, "1", true),
			Entry(`"0"`, "0", false),
			Entry(`"true"`, "true", true),
			Entry(`"false"`, "false", false),
			Entry("null.Bool", null.BoolFrom(true), true),
		)

		It("treats nil as no filter rather than false", func() {
			v, active, err := boolean.Normalize(datasource.Eq, nil, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeFalse())
			Expect(v).To(BeNil())
		})

		It("treats empty strings as no filter", func() {
			_, active, err := boolean.Normalize(datasource.Eq, "", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeFalse())
		})

		It("rejects other integers", func() {
			_, _, err := boolean.Normalize(datasource.Eq, 2, nil)

			Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
		})

		It("rejects other strings", func() {
			_, _, err := boolean.Normalize(datasource.Eq, "maybe", nil)

			Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
		})
	})

	Describe("Temporal types", func() {
		It("truncates dates to midnight", func() {
			v, _, err := field.NewDate().Normalize(datasource.Eq, "2024-03-05 17:30:00", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
		})

		It("reduces times to their clock", func() {
			v, _, err := field.NewTime().Normalize(datasource.Gte, "08:15:00", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(time.Date(0, time.January, 1, 8, 15, 0, 0, time.UTC)))
		})

		It("parses datetimes in the configured location", func() {
			loc := time.FixedZone("UTC+2", 2*60*60)
			v, _, err := field.NewDateTime(field.WithLocation(loc)).Normalize(datasource.Eq, "2024-03-05 10:00:00", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(v.(time.Time).Equal(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("tries custom layouts first", func() {
			v, _, err := field.NewDate(field.WithDateLayout("02/01/2006")).Normalize(datasource.Eq, "05/03/2024", nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
		})

		It("accepts time.Time values", func() {
			in := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
			v, _, err := field.NewDateTime().Normalize(datasource.Lt, in, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(in))
		})

		It("builds a range with the to bound omitted", func() {
			v, active, err := field.NewDateTime().Normalize(datasource.Between, map[string]any{"from": "2024-01-01 00:00:00"}, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeTrue())
			Expect(v.(datasource.Range).From).To(Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			Expect(v.(datasource.Range).To).To(BeNil())
		})

		It("fails when from is after to", func() {
			_, _, err := field.NewDate().Normalize(datasource.Between, map[string]any{
				"from": "2024-02-01",
				"to":   "2024-01-01",
			}, nil)

			Expect(errors.Is(err, datasource.ErrInvalidRange)).To(BeTrue())
		})

		It("rejects garbage", func() {
			_, _, err := field.NewDateTime().Normalize(datasource.Eq, "not a date", nil)

			Expect(errors.Is(err, datasource.ErrInvalidValue)).To(BeTrue())
		})

		It("does not support in", func() {
			Expect(datasource.SupportsComparison(field.NewDate(), datasource.In)).To(BeFalse())
		})
	})

	Describe("isNull", func() {
		It("accepts a boolean for every type", func() {
			for _, ft := range field.Core() {
				v, active, err := ft.Normalize(datasource.IsNull, "true", nil)

				Expect(err).ToNot(HaveOccurred(), ft.Type())
				Expect(active).To(BeTrue())
				Expect(v).To(Equal(true))
			}
		})
	})
})
