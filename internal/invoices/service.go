package invoices

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/harborlight/harborlight-ops/internal/dates"
	"github.com/harborlight/harborlight-ops/internal/shared"
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error)
	CountInvoices(ctx context.Context, req ListInvoicesRequest) (int, error)
	FindByNumber(ctx context.Context, number string) ([]Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv Invoice) (*Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
}

// View is an invoice together with its derived fields, the shape every
// consumer renders from.
type View struct {
	Invoice
	Derivation
}

// InvoiceInput carries caller-supplied invoice fields. Date fields accept
// canonical ISO or the lenient D/M/YYYY entry forms and are canonicalised
// before storage.
type InvoiceInput struct {
	InvoiceNumber string       `json:"invoice_number" validate:"required"`
	VendorID      int64        `json:"vendor_id" validate:"required,gt=0"`
	Amount        float64      `json:"amount" validate:"gte=0"`
	Currency      string       `json:"currency"`
	Status        string       `json:"status"`
	DueDate       string       `json:"due_date"`
	DeliveryDate  string       `json:"delivery_date"`
	OrderDate     string       `json:"order_date"`
	PostDate      string       `json:"post_date"`
	PaymentTerms  PaymentTerms `json:"payment_terms"`
	PONumber      string       `json:"po_number"`
	Notes         string       `json:"notes"`
}

// SaveResult pairs the stored view with the advisory duplicate flag. The
// flag never blocks the write; it is a soft warning for the form.
type SaveResult struct {
	View             View `json:"invoice"`
	DuplicateWarning bool `json:"duplicate_warning"`
}

// ListResult is a paginated, derived invoice listing.
type ListResult struct {
	Items      []View            `json:"items"`
	Summary    StatusCounts      `json:"summary"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service handles invoice business logic. All derivation flows through it
// with one "today" captured per call, so a status and its overdue-day count
// always agree.
type Service struct {
	repo     RepositoryPort
	cache    *Cache
	validate *validator.Validate
	clock    dates.Clock
	group    singleflight.Group
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		clock:    dates.Today,
	}
}

// WithClock overrides the derivation clock for tests.
func (s *Service) WithClock(clock dates.Clock) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// List returns derived invoice views matching the filter plus the status
// summary of the returned page.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) (*ListResult, error) {
	records, err := s.repo.ListInvoices(ctx, req)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountInvoices(ctx, ListInvoicesRequest{
		Status:        req.Status,
		VendorID:      req.VendorID,
		InvoiceNumber: req.InvoiceNumber,
	})
	if err != nil {
		return nil, err
	}

	today := s.clock()
	items := make([]View, 0, len(records))
	for _, inv := range records {
		items = append(items, View{Invoice: inv, Derivation: Derive(inv, today)})
	}

	page := 1
	perPage := req.Limit
	if perPage > 0 && req.Offset > 0 {
		page = req.Offset/perPage + 1
	}
	return &ListResult{
		Items:      items,
		Summary:    CountStatuses(records, today),
		Pagination: shared.NewPagination(page, perPage, total),
	}, nil
}

// Get returns one derived invoice view.
func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	view := View{Invoice: *inv, Derivation: Derive(*inv, s.clock())}
	return &view, nil
}

// Create validates and stores a new invoice, returning its derived view and
// the advisory duplicate-number flag.
func (s *Service) Create(ctx context.Context, input InvoiceInput) (*SaveResult, error) {
	inv, err := s.fromInput(input)
	if err != nil {
		return nil, err
	}
	duplicate := s.CheckNumber(ctx, inv.InvoiceNumber, 0)

	stored, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &SaveResult{
		View:             View{Invoice: *stored, Derivation: Derive(*stored, s.clock())},
		DuplicateWarning: duplicate,
	}, nil
}

// Update validates and overwrites an existing invoice.
func (s *Service) Update(ctx context.Context, id int64, input InvoiceInput) (*SaveResult, error) {
	inv, err := s.fromInput(input)
	if err != nil {
		return nil, err
	}
	inv.ID = id
	duplicate := s.CheckNumber(ctx, inv.InvoiceNumber, id)

	stored, err := s.repo.UpdateInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &SaveResult{
		View:             View{Invoice: *stored, Derivation: Derive(*stored, s.clock())},
		DuplicateWarning: duplicate,
	}, nil
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// CheckNumber reports whether the trimmed candidate collides with another
// stored invoice number, skipping excludeID. Lookup failures degrade to
// false; the check is advisory and must never block a save.
func (s *Service) CheckNumber(ctx context.Context, candidate string, excludeID int64) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	matches, err := s.repo.FindByNumber(ctx, candidate)
	if err != nil {
		return false
	}
	return IsDuplicateNumber(candidate, matches, excludeID)
}

// NumberLookup adapts the repository for the debounced DuplicateChecker.
func (s *Service) NumberLookup() NumberLookup {
	return func(ctx context.Context, number string) ([]Invoice, error) {
		return s.repo.FindByNumber(ctx, number)
	}
}

// Summary tallies display statuses across all invoices as of today. Results
// are cached per calendar day under the write-bumped cache version, and
// concurrent recomputes collapse through singleflight.
func (s *Service) Summary(ctx context.Context) (StatusCounts, error) {
	today := s.clock()
	asOf := dates.Format(today)

	loader := func(ctx context.Context) (interface{}, error) {
		records, err := s.repo.ListInvoices(ctx, ListInvoicesRequest{})
		if err != nil {
			return nil, err
		}
		return CountStatuses(records, today), nil
	}

	key, err := s.cache.BuildKey(ctx, keySummary(asOf)...)
	if err != nil {
		return StatusCounts{}, err
	}
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var counts StatusCounts
		if err := s.cache.FetchJSON(ctx, key, &counts, loader); err != nil {
			return StatusCounts{}, err
		}
		return counts, nil
	})
	if err != nil {
		return StatusCounts{}, err
	}
	return value.(StatusCounts), nil
}

// Report assembles the printable report rows: every invoice, derived and
// ordered most-overdue first.
func (s *Service) Report(ctx context.Context) ([]View, error) {
	records, err := s.repo.ListInvoices(ctx, ListInvoicesRequest{})
	if err != nil {
		return nil, err
	}
	today := s.clock()
	sorted := SortForReport(records, today)
	views := make([]View, 0, len(sorted))
	for _, inv := range sorted {
		views = append(views, View{Invoice: inv, Derivation: Derive(inv, today)})
	}
	return views, nil
}

func (s *Service) fromInput(input InvoiceInput) (Invoice, error) {
	input.InvoiceNumber = strings.TrimSpace(input.InvoiceNumber)
	if err := s.validate.Struct(input); err != nil {
		return Invoice{}, fmt.Errorf("%w: %s", shared.ErrValidation, validationDetail(err))
	}
	inv := Invoice{
		InvoiceNumber: input.InvoiceNumber,
		VendorID:      input.VendorID,
		Amount:        input.Amount,
		Currency:      defaultString(input.Currency, "USD"),
		Status:        input.Status,
		PaymentTerms:  input.PaymentTerms,
		PONumber:      input.PONumber,
		Notes:         input.Notes,
	}
	inv.DueDate = canonicalDate(input.DueDate)
	inv.DeliveryDate = canonicalDate(input.DeliveryDate)
	inv.OrderDate = canonicalDate(input.OrderDate)
	inv.PostDate = canonicalDate(input.PostDate)
	// delivery_date has always been an alias for due_date on write
	if inv.DueDate == "" && inv.DeliveryDate != "" {
		inv.DueDate = inv.DeliveryDate
	}
	return inv, nil
}

func (s *Service) bump(ctx context.Context) {
	_ = s.cache.Bump(ctx)
}

// canonicalDate re-emits any accepted entry form as canonical ISO; values
// that parse in no form are dropped rather than stored malformed.
func canonicalDate(s string) string {
	d := dates.ParseLenient(s)
	if d == nil {
		return ""
	}
	return dates.Format(*d)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func validationDetail(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fmt.Sprintf("%s is invalid", fe.Field()))
	}
	return strings.Join(fields, "; ")
}
