package billstore

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/billed/internal/bill"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		files       *mockFiles
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		files = newMockFiles()
		service := NewServiceWithDeps(db, files, "http://store", &mockIDGenerator{id: "draft-1"})
		ghttpServer = ghttp.NewServer()
		ghttpServer.AllowUnhandledRequests = false
		server := NewServerWithMux(service, http.NewServeMux())
		ghttpServer.RouteToHandler(http.MethodGet, "/bills", server.ServeHTTP)
		ghttpServer.RouteToHandler(http.MethodPost, "/bills", server.ServeHTTP)
		ghttpServer.RouteToHandler(http.MethodPatch, "/bills/draft-1", server.ServeHTTP)
		ghttpServer.RouteToHandler(http.MethodPatch, "/bills/missing", server.ServeHTTP)
		ghttpServer.RouteToHandler(http.MethodDelete, "/bills/draft-1", server.ServeHTTP)
		ghttpServer.RouteToHandler(http.MethodGet, "/files/draft-1_note.png", server.ServeHTTP)
		ghttpServer.RouteToHandler(http.MethodOptions, "/bills", server.ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	upload := func(filename string) *http.Response {
		var b bytes.Buffer
		writer := multipart.NewWriter(&b)
		part, _ := writer.CreateFormFile("file", filename)
		part.Write([]byte("fake image data"))
		writer.WriteField("email", "a@a")
		writer.Close()

		resp, err := http.Post(ghttpServer.URL()+"/bills", writer.FormDataContentType(), &b)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("POST /bills", func() {
		When("the receipt is an image", func() {
			It("should answer with the draft key and receipt URL", func() {
				resp := upload("note.png")
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var created bill.Created
				Expect(json.NewDecoder(resp.Body).Decode(&created)).To(Succeed())
				Expect(created.Key).To(Equal("draft-1"))
				Expect(created.FileURL).To(Equal("http://store/files/draft-1_note.png"))
				Expect(db.bills["draft-1"].Email).To(Equal("a@a"))
			})
		})

		When("the receipt is not an image", func() {
			It("should return Bad Request", func() {
				resp := upload("justif.pdf")
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("no file is sent", func() {
			It("should return Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/bills", "multipart/form-data; boundary=x", strings.NewReader("--x--\r\n"))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("GET /bills", func() {
		It("should return the bills as JSON", func() {
			db.bills["1"] = &bill.Bill{ID: "1", Name: "Taxi"}
			resp, err := http.Get(ghttpServer.URL() + "/bills")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
			var bills []bill.Bill
			Expect(json.NewDecoder(resp.Body).Decode(&bills)).To(Succeed())
			Expect(bills).To(HaveLen(1))
		})

		It("should return an empty array when there are no bills", func() {
			resp, err := http.Get(ghttpServer.URL() + "/bills")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
		})
	})

	Describe("PATCH /bills/{id}", func() {
		patch := func(id, body string) *http.Response {
			req, err := http.NewRequest(http.MethodPatch, ghttpServer.URL()+"/bills/"+id, strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		It("should update an existing draft", func() {
			db.bills["draft-1"] = &bill.Bill{ID: "draft-1", FileURL: "http://store/files/x.png", FileName: "x.png"}
			resp := patch("draft-1", `{"name":"Taxi","amount":45,"date":"2023-05-12","status":"pending"}`)
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(db.bills["draft-1"].Name).To(Equal("Taxi"))
			Expect(db.bills["draft-1"].FileName).To(Equal("x.png"))
		})

		It("should return Not Found for an unknown bill", func() {
			resp := patch("missing", `{"name":"Taxi"}`)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should return Bad Request for an invalid body", func() {
			resp := patch("draft-1", `{`)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DELETE /bills/{id}", func() {
		It("should return No Content", func() {
			db.bills["draft-1"] = &bill.Bill{ID: "draft-1"}
			req, err := http.NewRequest(http.MethodDelete, ghttpServer.URL()+"/bills/draft-1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.bills).To(BeEmpty())
		})
	})

	Describe("GET /files/{name}", func() {
		It("should serve the receipt with its content type", func() {
			files.files["draft-1_note.png"] = []byte("png bytes")
			resp, err := http.Get(ghttpServer.URL() + "/files/draft-1_note.png")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
		})
	})

	Describe("preflight", func() {
		It("should answer OPTIONS with No Content", func() {
			req, err := http.NewRequest(http.MethodOptions, ghttpServer.URL()+"/bills", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
		})
	})
})
