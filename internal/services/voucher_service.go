package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"travelorders/internal/domain"
	"travelorders/internal/domain/models"
)

// VoucherService renders a printable voucher for an approved travel
// order. Visibility follows the same rules as Show.
type VoucherService struct {
	Orders *TravelOrderService
}

func (s VoucherService) Generate(ctx context.Context, actor models.Actor, id int64) ([]byte, string, error) {
	order, err := s.Orders.Show(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if order.Status != models.StatusApproved {
		return nil, "", domain.ValidationError{Field: "status", Msg: "voucher is only available for approved travel orders"}
	}
	return buildVoucherPDF(order)
}

func buildVoucherPDF(o models.TravelOrder) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Travel Order Voucher", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRAVEL ORDER VOUCHER")
	pdf.Ln(12)

	ownerName := ""
	if o.User != nil {
		ownerName = o.User.Name
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Order       : #%d", o.ID),
		fmt.Sprintf("Requester   : %s", safe(ownerName, "-")),
		fmt.Sprintf("Destination : %s - %s, %s", o.City, o.State, o.Country),
		fmt.Sprintf("Departure   : %s", o.DepartureDate.Format("02/01/2006")),
		fmt.Sprintf("Return      : %s", o.ReturnDate.Format("02/01/2006")),
		fmt.Sprintf("Status      : %s", o.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Present this voucher together with a valid ID.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "could not render voucher", Err: err}
	}
	filename := fmt.Sprintf("travel-order-%d-voucher.pdf", o.ID)
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
