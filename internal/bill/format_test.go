package bill

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FormatDate", func() {
	var (
		input     string
		formatted string
		err       error
	)

	JustBeforeEach(func() {
		formatted, err = FormatDate(input)
	})

	When("the date is a valid ISO date", func() {
		BeforeEach(func() {
			input = "2004-04-04"
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should render day, abbreviated month and two-digit year", func() {
			Expect(formatted).To(Equal("4 Avr. 04"))
		})
	})

	DescribeTable("month abbreviations",
		func(iso, expected string) {
			out, err := FormatDate(iso)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(expected))
		},
		Entry("january", "2021-01-15", "15 Jan. 21"),
		Entry("february keeps its accent", "2003-02-09", "9 Fév. 03"),
		Entry("march", "2003-03-03", "3 Mar. 03"),
		Entry("may has no dot in the locale", "2022-05-01", "1 Mai. 22"),
		Entry("august", "2019-08-31", "31 Aoû. 19"),
		Entry("december", "2010-12-25", "25 Déc. 10"),
	)

	When("the date is malformed", func() {
		BeforeEach(func() {
			input = "not-a-date"
		})

		It("should return ErrInvalidDate", func() {
			Expect(err).To(MatchError(ErrInvalidDate))
		})

		It("should return an empty label", func() {
			Expect(formatted).To(BeEmpty())
		})
	})

	It("should format from several goroutines at once", func() {
		var wg sync.WaitGroup
		results := make([]string, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = FormatDate("2004-04-04")
			}(i)
		}
		wg.Wait()
		Expect(results).To(HaveEach("4 Avr. 04"))
	})

	When("the date has an impossible day", func() {
		BeforeEach(func() {
			input = "2023-02-30"
		})

		It("should return ErrInvalidDate", func() {
			Expect(err).To(MatchError(ErrInvalidDate))
		})
	})
})

var _ = Describe("FormatStatus", func() {
	DescribeTable("labels",
		func(status Status, expected string) {
			Expect(FormatStatus(status)).To(Equal(expected))
		},
		Entry("pending", StatusPending, "En attente"),
		Entry("accepted", StatusAccepted, "Accepté"),
		Entry("refused", StatusRefused, "Refusé"),
		Entry("unknown values pass through", Status("archived"), "archived"),
		Entry("empty passes through", Status(""), ""),
	)
})
