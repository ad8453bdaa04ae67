package metrics_test

import (
	"context"

	"github.com/friendsofgo/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/nrfta/datasource-go"
	"github.com/nrfta/datasource-go/collection"
	"github.com/nrfta/datasource-go/extension/metrics"
)

// failingDriver rejects every query.
type failingDriver struct {
	datasource.FieldTypes
}

func (failingDriver) Type() string { return "failing" }

func (failingDriver) Execute(context.Context, datasource.Query) (datasource.Result, error) {
	return nil, errors.New("backend down")
}

// sampleValue sums the counter samples of the named family carrying the
// label.
func sampleValue(families []*dto.MetricFamily, name, label, value string) float64 {
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					sum += m.GetCounter().GetValue()
				}
			}
		}
	}
	return sum
}

var _ = Describe("Extension", func() {
	var (
		ctx context.Context
		reg *prometheus.Registry
		ext *metrics.Extension
		ds  *datasource.DataSource
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = prometheus.NewRegistry()

		var err error
		ext, err = metrics.New(reg, "test")
		Expect(err).ToNot(HaveOccurred())

		driver, err := collection.New([]map[string]any{{"views": 1}, {"views": 2}}, collection.NewCoreExtension())
		Expect(err).ToNot(HaveOccurred())
		ds, err = datasource.New("news", driver, datasource.WithExtensions(ext))
		Expect(err).ToNot(HaveOccurred())
		Expect(ds.AddField("views", "number", datasource.Gte, nil)).To(Succeed())
	})

	It("counts binds and validation failures", func() {
		Expect(ds.BindParameters(ctx, datasource.Parameters{"news": map[string]any{}})).To(Succeed())
		Expect(ds.BindParameters(ctx, datasource.Parameters{"news": map[string]any{
			"fields": map[string]any{"views": "many"},
			"page":   -1,
		}})).ToNot(Succeed())

		families, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())
		Expect(sampleValue(families, "test_datasource_binds_total", "datasource", "news")).To(Equal(2.0))
		Expect(testutil.CollectAndCount(reg, "test_datasource_validation_failures_total")).To(Equal(2))
	})

	It("records successful executions once per computed result", func() {
		_, err := ds.Result(ctx)
		Expect(err).ToNot(HaveOccurred())
		_, err = ds.Result(ctx)
		Expect(err).ToNot(HaveOccurred())

		Expect(testutil.CollectAndCount(reg, "test_datasource_results_total")).To(Equal(1))
		Expect(testutil.CollectAndCount(reg, "test_datasource_result_duration_seconds")).To(Equal(1))

		families, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())
		Expect(sampleValue(families, "test_datasource_results_total", "outcome", metrics.OutcomeSuccess)).To(Equal(1.0))
	})

	It("records failed executions", func() {
		broken, err := datasource.New("broken", failingDriver{}, datasource.WithExtensions(ext))
		Expect(err).ToNot(HaveOccurred())

		_, err = broken.Result(ctx)
		Expect(err).To(HaveOccurred())

		families, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())
		Expect(sampleValue(families, "test_datasource_results_total", "outcome", metrics.OutcomeError)).To(Equal(1.0))
	})

	It("reuses collectors registered earlier", func() {
		again, err := metrics.New(reg, "test")

		Expect(err).ToNot(HaveOccurred())
		Expect(again).ToNot(BeNil())
	})
})
