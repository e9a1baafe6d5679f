// Package views renders the employee pages as HTML fragments for the document body.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"

	"github.com/zombor/billed/internal/bill"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// ExpenseTypes are the categories offered by the new bill form
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// BillsData is the content of the bill list page
type BillsData struct {
	Rows    []bill.Row
	Loading bool
}

// Bills renders the bill list. Rows are shown newest first by their stored ISO
// date; the controller hands them over in store order.
func Bills(data BillsData) (string, error) {
	rows := append([]bill.Row(nil), data.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Bill.Date > rows[j].Bill.Date
	})
	data.Rows = rows
	return render("bills", data)
}

// NewBill renders the new bill form
func NewBill() (string, error) {
	return render("newbill", struct{ Types []string }{ExpenseTypes})
}

// Error renders the error page with message shown verbatim
func Error(message string) (string, error) {
	return render("error", message)
}

// Login renders the login page
func Login() (string, error) {
	return render("login", nil)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s page: %w", name, err)
	}
	return buf.String(), nil
}
