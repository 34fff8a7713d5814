package extopt

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"palletpack/internal/model"
)

var sample = model.ProblemInstance{
	Capacity: 10,
	Items: []model.Item{
		{ID: 1, Weight: 6, Profit: 10},
		{ID: 2, Weight: 5, Profit: 9},
		{ID: 3, Weight: 5, Profit: 9},
	},
}

var _ = Describe("File format", func() {
	Context("input", func() {
		It("writes capacity then id profit weight per line", func() {
			var buf bytes.Buffer
			Expect(WriteInput(&buf, sample)).To(Succeed())
			Expect(buf.String()).To(Equal("10\n1 10 6\n2 9 5\n3 9 5\n"))
		})

		It("reads back what it wrote", func() {
			var buf bytes.Buffer
			Expect(WriteInput(&buf, sample)).To(Succeed())
			got, err := ReadInput(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Capacity).To(Equal(10))
			Expect(got.Items).To(Equal(sample.Items))
		})

		It("rejects a missing capacity line", func() {
			_, err := ReadInput(strings.NewReader("\n\n"))
			Expect(err).To(MatchError(ErrMalformedInput))
		})
	})

	Context("output", func() {
		It("resolves ids positionally and sums the reported figures", func() {
			sol, err := ReadOutput(strings.NewReader("2 9 5\n\n3 9 5\n"), sample)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Items).To(Equal([]model.Item{sample.Items[1], sample.Items[2]}))
			Expect(sol.TotalProfit).To(Equal(18))
			Expect(sol.TotalWeight).To(Equal(10))
		})

		It("trusts the reported profit and weight over the instance", func() {
			sol, err := ReadOutput(strings.NewReader("1 11 7\n"), sample)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.TotalProfit).To(Equal(11))
			Expect(sol.TotalWeight).To(Equal(7))
			Expect(sol.Items[0]).To(Equal(sample.Items[0]))
		})

		It("returns an empty solution for an empty file", func() {
			sol, err := ReadOutput(strings.NewReader(""), sample)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Items).To(BeEmpty())
			Expect(sol.TotalProfit).To(BeZero())
		})

		DescribeTable("rejects malformed lines",
			func(body string) {
				_, err := ReadOutput(strings.NewReader(body), sample)
				Expect(err).To(MatchError(ErrMalformedOutput))
			},
			Entry("too few fields", "1 10\n"),
			Entry("non-numeric", "a b c\n"),
			Entry("id zero", "0 1 1\n"),
			Entry("id past the end", "4 1 1\n"),
			Entry("duplicate id", "1 10 6\n1 10 6\n"),
		)

		It("writes lines ReadOutput accepts", func() {
			var buf bytes.Buffer
			Expect(WriteOutput(&buf, sample.Items[1:])).To(Succeed())
			sol, err := ReadOutput(&buf, sample)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.TotalProfit).To(Equal(18))
		})
	})
})
