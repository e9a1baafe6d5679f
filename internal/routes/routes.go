// Package routes names the pages of the employee application.
package routes

import "context"

const (
	Login     = "/"
	Bills     = "#employee/bills"
	NewBill   = "#employee/bill/new"
	Dashboard = "#admin/dashboard"
)

// NavigateFunc replaces the visible page with the page at path
type NavigateFunc func(ctx context.Context, path string)
