package integration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	invoicesapp "parking-core/internal/invoices/application"
	invoices "parking-core/internal/invoices/domain"
	invoicesmemory "parking-core/internal/invoices/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var baseTime = time.Date(2024, time.February, 12, 15, 0, 0, 0, time.UTC)

// sources maps invoice IDs to their refs the way the postgres join does.
func sources() invoicesmemory.ResolveSource {
	end := baseTime.Add(-time.Hour)
	refs := map[string]struct {
		session     *invoices.SessionRef
		observation *invoices.ObservationRef
	}{
		"invoice-1": {session: &invoices.SessionRef{
			License: "AB-123-C",
			Street:  "Hoofdstraat",
			StartAt: baseTime.Add(-3 * time.Hour),
			EndAt:   &end,
		}},
		"invoice-2": {observation: &invoices.ObservationRef{
			License:    "AB-123-C",
			Street:     "Kerkstraat",
			ObservedAt: baseTime.Add(-30 * time.Minute),
		}},
		"invoice-3": {observation: &invoices.ObservationRef{
			License:    "XY-987-Z",
			Street:     "Kerkstraat",
			ObservedAt: baseTime.Add(-20 * time.Minute),
		}},
	}
	return func(ctx context.Context, invoice invoices.Invoice) (*invoices.SessionRef, *invoices.ObservationRef, error) {
		ref := refs[invoice.ID]
		return ref.session, ref.observation, nil
	}
}

func seededService(t *testing.T) (*invoicesapp.Service, *invoicesmemory.InvoiceRepository) {
	t.Helper()
	ctx := context.Background()
	repo := invoicesmemory.NewInvoiceRepository(sources())
	seed := []*invoices.Invoice{
		{ID: "invoice-1", SessionID: "session-1", IssuedAt: baseTime.Add(-time.Hour), AmountCents: 6000},
		{ID: "invoice-2", ObservationID: "obs-1", IssuedAt: baseTime.Add(-15 * time.Minute), AmountCents: 9500},
		{ID: "invoice-3", ObservationID: "obs-2", IssuedAt: baseTime.Add(-10 * time.Minute), AmountCents: 9500},
	}
	for _, invoice := range seed {
		if err := repo.Save(ctx, invoice); err != nil {
			t.Fatalf("seed invoice %s: %v", invoice.ID, err)
		}
	}
	service, err := invoicesapp.NewService(repo, fixedClock{now: baseTime}, nil, nil)
	if err != nil {
		t.Fatalf("new invoice service: %v", err)
	}
	return service, repo
}

func TestInvoiceList_ByLicense(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()

	details, err := service.ListByLicense(ctx, "AB-123-C")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 invoices for AB-123-C, got %d", len(details))
	}
	for _, detail := range details {
		switch detail.Invoice.ID {
		case "invoice-1":
			if detail.Session == nil || detail.Session.Street != "Hoofdstraat" {
				t.Fatalf("invoice-1 should carry its session ref: %+v", detail)
			}
		case "invoice-2":
			if detail.Observation == nil || detail.Observation.Street != "Kerkstraat" {
				t.Fatalf("invoice-2 should carry its observation ref: %+v", detail)
			}
		default:
			t.Fatalf("unexpected invoice %s for AB-123-C", detail.Invoice.ID)
		}
	}

	other, err := service.ListByLicense(ctx, "XY-987-Z")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 1 || other[0].Invoice.ID != "invoice-3" {
		t.Fatalf("expected only invoice-3 for XY-987-Z, got %+v", other)
	}
}

func TestInvoicePay(t *testing.T) {
	service, repo := seededService(t)
	ctx := context.Background()

	if err := service.Pay(ctx, "invoice-2"); err != nil {
		t.Fatalf("pay: %v", err)
	}
	paid, err := service.Get(ctx, "invoice-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !paid.Paid {
		t.Fatal("invoice-2 should be paid")
	}

	// Paying again is a no-op.
	if err := service.Pay(ctx, "invoice-2"); err != nil {
		t.Fatalf("repay: %v", err)
	}

	// Other invoices stay unpaid.
	for _, invoice := range repo.All() {
		if invoice.ID != "invoice-2" && invoice.Paid {
			t.Fatalf("invoice %s should still be unpaid", invoice.ID)
		}
	}
}

func TestInvoicePay_NotFound(t *testing.T) {
	service, _ := seededService(t)
	err := service.Pay(context.Background(), "missing")
	if !errors.Is(err, invoices.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvoiceGet_NotFound(t *testing.T) {
	service, _ := seededService(t)
	_, err := service.Get(context.Background(), "missing")
	if !errors.Is(err, invoices.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
