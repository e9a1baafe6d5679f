package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/shopspring/decimal"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/session"
)

var _ = Describe("Client", func() {
	var (
		ctx     context.Context
		server  *ghttp.Server
		storage *session.MemoryStorage
		client  *Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = ghttp.NewServer()
		storage = session.NewMemoryStorage()
		client = NewClient(server.URL()+"/", storage)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(session.SignIn(storage, session.User{Type: session.TypeEmployee, Email: "me@test.tld"})).To(Succeed())
		})

		When("the store answers with bills", func() {
			BeforeEach(func() {
				Expect(storage.SetItem(session.TokenKey, "token-123")).To(Succeed())
				server.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/bills", "email=me%40test.tld"),
					ghttp.VerifyHeaderKV("Authorization", "Bearer token-123"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, []bill.Bill{
						{ID: "b", Date: "2004-04-04", Status: bill.StatusPending, Amount: decimal.NewFromInt(400)},
						{ID: "a", Date: "2003-03-03", Status: bill.StatusAccepted},
					}),
				))
			})

			It("should return the bills in store order", func() {
				bills, err := client.Bills().List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(bills).To(HaveLen(2))
				Expect(bills[0].ID).To(Equal("b"))
				Expect(bills[0].Amount.Equal(decimal.NewFromInt(400))).To(BeTrue())
				Expect(bills[1].Status).To(Equal(bill.StatusAccepted))
			})
		})

		When("the store answers with null", func() {
			BeforeEach(func() {
				server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "null"))
			})

			It("should return an empty list", func() {
				bills, err := client.Bills().List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(bills).NotTo(BeNil())
				Expect(bills).To(BeEmpty())
			})
		})

		When("nobody is signed in", func() {
			BeforeEach(func() {
				Expect(storage.Clear()).To(Succeed())
			})

			It("should not ask the store for anyone's bills", func() {
				_, err := client.Bills().List(ctx)
				Expect(err).To(MatchError(session.ErrNoUser))
				Expect(server.ReceivedRequests()).To(BeEmpty())
			})
		})

		DescribeTable("failing responses",
			func(status int, message string) {
				server.AppendHandlers(ghttp.RespondWith(status, "boom"))
				_, err := client.Bills().List(ctx)
				Expect(err).To(MatchError(message))

				var storeErr *Error
				Expect(errors.As(err, &storeErr)).To(BeTrue())
				Expect(storeErr.Status).To(Equal(status))
			},
			Entry("not found", http.StatusNotFound, "Erreur 404"),
			Entry("server error", http.StatusInternalServerError, "Erreur 500"),
		)
	})

	Describe("Create", func() {
		var (
			gotEmail    string
			gotFilename string
			gotData     string
			gotType     string
		)

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/bills"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
					gotEmail = r.FormValue("email")
					f, header, err := r.FormFile("file")
					Expect(err).NotTo(HaveOccurred())
					defer f.Close()
					data, err := io.ReadAll(f)
					Expect(err).NotTo(HaveOccurred())
					gotFilename = header.Filename
					gotType = header.Header.Get("Content-Type")
					gotData = string(data)
				},
				ghttp.RespondWithJSONEncoded(http.StatusCreated, bill.Created{
					FileURL: "https://localhost:3456/images/test.jpg",
					Key:     "1234",
				}),
			))
		})

		It("should upload the file with the owner email", func() {
			created, err := client.Bills().Create(ctx, bill.Upload{
				FileName:    "note.png",
				ContentType: "image/png",
				Data:        []byte("png bytes"),
				Email:       "a@a",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Key).To(Equal("1234"))
			Expect(created.FileURL).To(Equal("https://localhost:3456/images/test.jpg"))
			Expect(gotEmail).To(Equal("a@a"))
			Expect(gotFilename).To(Equal("note.png"))
			Expect(gotType).To(Equal("image/png"))
			Expect(gotData).To(Equal("png bytes"))
		})
	})

	Describe("Update", func() {
		var received bill.Bill

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPatch, "/bills/1234"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, bill.Bill{ID: "1234", Status: bill.StatusPending}),
			))
		})

		It("should send the bill to its id", func() {
			updated, err := client.Bills().Update(ctx, "1234", bill.Bill{
				Name:   "Taxi",
				Amount: decimal.NewFromInt(45),
				Status: bill.StatusPending,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal("1234"))
			Expect(received.Name).To(Equal("Taxi"))
			Expect(received.Amount.Equal(decimal.NewFromInt(45))).To(BeTrue())
		})
	})
})
