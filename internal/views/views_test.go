package views

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/dom"
)

var _ = Describe("Bills", func() {
	var (
		doc  *dom.Document
		rows []bill.Row
	)

	BeforeEach(func() {
		rows = []bill.Row{
			{Bill: bill.Bill{ID: "1", Date: "2003-03-03", FileURL: "https://x/a.png"}, Date: "3 Mar. 03", Status: "Accepté"},
			{Bill: bill.Bill{ID: "2", Date: "2004-04-04", FileURL: "https://x/b.png"}, Date: "4 Avr. 04", Status: "En attente"},
			{Bill: bill.Bill{ID: "3", Date: "2001-01-01", FileURL: "https://x/c.png"}, Date: "1 Jan. 01", Status: "Refusé"},
		}
		doc = dom.New()
	})

	JustBeforeEach(func() {
		markup, err := Bills(BillsData{Rows: rows})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.SetBody(markup)).To(Succeed())
	})

	It("should order bills from latest to earliest", func() {
		var dates []string
		for _, el := range doc.AllByTestID("bill-date") {
			dates = append(dates, el.Attr("data-date"))
		}
		Expect(dates).To(Equal([]string{"2004-04-04", "2003-03-03", "2001-01-01"}))
	})

	It("should not reorder the rows it was given", func() {
		Expect(rows[0].Bill.ID).To(Equal("1"))
	})

	It("should render the display labels", func() {
		Expect(doc.AllByTestID("bill-date")[0].Text()).To(Equal("4 Avr. 04"))
		Expect(doc.AllByTestID("bill-status")[0].Text()).To(Equal("En attente"))
	})

	It("should carry each receipt URL on its view control", func() {
		eyes := doc.AllByTestID("icon-eye")
		Expect(eyes).To(HaveLen(3))
		Expect(eyes[0].Attr("data-bill-url")).To(Equal("https://x/b.png"))
	})

	It("should highlight the bills icon", func() {
		Expect(doc.ByTestID("icon-window").HasClass("active-icon")).To(BeTrue())
	})

	It("should render the receipt modal", func() {
		Expect(doc.ByID("modaleFile").ByClass("modal-body")).NotTo(BeNil())
	})
})

var _ = Describe("NewBill", func() {
	It("should render every form field", func() {
		markup, err := NewBill()
		Expect(err).NotTo(HaveOccurred())
		doc := dom.New()
		Expect(doc.SetBody(markup)).To(Succeed())

		for _, id := range []string{"form-new-bill", "expense-type", "expense-name", "amount", "datepicker", "vat", "pct", "commentary", "file"} {
			Expect(doc.ByTestID(id)).NotTo(BeNil(), id)
		}
		Expect(doc.ByTestID("expense-type").Value()).To(Equal("Transports"))
		Expect(doc.Body().Text()).To(ContainSubstring("Envoyer une note de frais"))
	})
})

var _ = Describe("Error", func() {
	It("should show the message verbatim", func() {
		markup, err := Error("Erreur 404")
		Expect(err).NotTo(HaveOccurred())
		doc := dom.New()
		Expect(doc.SetBody(markup)).To(Succeed())
		Expect(doc.ByTestID("error-message").Text()).To(Equal("Erreur 404"))
	})
})
