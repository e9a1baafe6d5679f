// Package billstore is a development bill store: it keeps bills in BoltDB and
// receipts on disk, and serves them over the API the store client expects.
package billstore

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/billed/internal/bill"
)

// ErrUnsupportedFile is returned when a receipt is not a jpg, jpeg or png image
var ErrUnsupportedFile = errors.New("unsupported receipt file")

// IDGenerator generates unique IDs for bills
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Service handles bill operations
type Service struct {
	db          DB
	files       FileStorage
	publicURL   string
	idGenerator IDGenerator
}

// NewService creates a Service. publicURL is the address clients use to reach
// the server and prefixes every receipt URL.
func NewService(db DB, files FileStorage, publicURL string) *Service {
	return NewServiceWithDeps(db, files, publicURL, uuidGenerator{})
}

// NewServiceWithDeps creates a Service with a custom ID generator for testing
func NewServiceWithDeps(db DB, files FileStorage, publicURL string, idGen IDGenerator) *Service {
	return &Service{
		db:          db,
		files:       files,
		publicURL:   strings.TrimRight(publicURL, "/"),
		idGenerator: idGen,
	}
}

// sanitizeFilename strips special characters from a file name and bounds its length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(spaces.ReplaceAllString(base, " "))
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return strings.ReplaceAll(base, " ", "_") + ext
}

// CreateDraft stores a receipt and allocates a pending bill for it
func (s *Service) CreateDraft(filename string, data []byte, email string) (*bill.Bill, error) {
	if !bill.AllowedFile(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	id := s.idGenerator.Generate()
	stored, err := s.files.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}

	b := &bill.Bill{
		ID:       id,
		Email:    email,
		FileURL:  s.publicURL + "/files/" + url.PathEscape(stored),
		FileName: filename,
		Status:   bill.StatusPending,
	}
	if err := s.db.SaveBill(b); err != nil {
		s.files.Delete(stored)
		return nil, fmt.Errorf("saving bill to database: %w", err)
	}
	return b, nil
}

// UpdateBill replaces the employee fields of a bill. The id, the reviewer
// comment and, unless new ones are given, the receipt are kept.
func (s *Service) UpdateBill(id string, in bill.Bill) (*bill.Bill, error) {
	existing, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}

	in.ID = existing.ID
	in.CommentAdmin = existing.CommentAdmin
	if in.FileURL == "" {
		in.FileURL = existing.FileURL
		in.FileName = existing.FileName
	}
	if in.Email == "" {
		in.Email = existing.Email
	}
	if in.Status == "" {
		in.Status = existing.Status
	}

	if err := s.db.SaveBill(&in); err != nil {
		return nil, fmt.Errorf("saving bill to database: %w", err)
	}
	return &in, nil
}

// GetBill retrieves a bill by ID
func (s *Service) GetBill(id string) (*bill.Bill, error) {
	b, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return b, nil
}

// ListBills returns the bills of email, or every bill when email is empty
func (s *Service) ListBills(email string) ([]*bill.Bill, error) {
	bills, err := s.db.ListBills()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	if email == "" {
		return bills, nil
	}

	owned := make([]*bill.Bill, 0, len(bills))
	for _, b := range bills {
		if b.Email == email {
			owned = append(owned, b)
		}
	}
	return owned, nil
}

// DeleteBill removes a bill and its receipt
func (s *Service) DeleteBill(id string) error {
	b, err := s.db.GetBill(id)
	if err != nil {
		return fmt.Errorf("getting bill for deletion: %w", err)
	}

	if name := storedName(b.FileURL); name != "" {
		if err := s.files.Delete(name); err != nil {
			slog.Warn("Failed to delete receipt", "file", name, "error", err)
		}
	}

	if err := s.db.DeleteBill(id); err != nil {
		return fmt.Errorf("deleting bill from database: %w", err)
	}
	return nil
}

// GetFile returns a stored receipt with its content type
func (s *Service) GetFile(name string) ([]byte, string, error) {
	data, err := s.files.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	contentType := "application/octet-stream"
	switch bill.Extension(name) {
	case "jpg", "jpeg":
		contentType = "image/jpeg"
	case "png":
		contentType = "image/png"
	}
	return data, contentType, nil
}

func storedName(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil || u.Path == "" {
		return ""
	}
	return path.Base(u.Path)
}
