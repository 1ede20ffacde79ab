package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

// DocsService renders the PDF e-ticket of a PNR.
type DocsService struct {
	Reader    BookingReader
	RequestID string
	Loader    func(ctx context.Context, pnr string) (models.PNRDetail, error)
}

func (s DocsService) GenerateETicket(ctx context.Context, pnr string) ([]byte, string, error) {
	d, err := s.load(ctx, pnr)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("pnr=%s passengers=%d", d.PNR, len(d.Passengers)))
	return buildETicketPDF(d)
}

func (s DocsService) load(ctx context.Context, pnr string) (models.PNRDetail, error) {
	if s.Loader != nil {
		return s.Loader(ctx, pnr)
	}
	return PNRService{Reader: s.Reader, RequestID: s.RequestID}.Status(ctx, pnr)
}

func buildETicketPDF(d models.PNRDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+d.PNR, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ELECTRONIC RESERVATION SLIP")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR            : %s", safe(d.PNR, "-")),
		fmt.Sprintf("Train          : %s %s", safe(d.TrainNumber, "-"), safe(d.TrainName, "")),
		fmt.Sprintf("Class          : %s", safe(string(d.ClassType), "-")),
		fmt.Sprintf("From / To      : %s -> %s", safe(d.SourceStation, "-"), safe(d.DestinationStation, "-")),
		fmt.Sprintf("Journey date   : %s", utils.FormatDate(d.JourneyDate)),
		fmt.Sprintf("Total fare     : %s", utils.FormatRupee(d.TotalFare)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	widths := []float64{10, 60, 15, 20, 30, 30}
	for i, h := range []string{"#", "Name", "Age", "Gender", "Status", "Seat/Berth"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for i, p := range d.Passengers {
		row := []string{
			fmt.Sprintf("%d", i+1),
			safe(p.Name, "-"),
			fmt.Sprintf("%d", p.Age),
			safe(p.Gender, "-"),
			string(p.Status),
			seatLabel(p),
		}
		for j, v := range row {
			pdf.CellFormat(widths[j], 8, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "RAC passengers share a berth. Waitlisted passengers are not allowed to board unless confirmed. Carry a valid photo ID.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.PNR))
	return buf.Bytes(), filename, nil
}

func seatLabel(p models.PNRPassenger) string {
	if p.Status == models.StatusCancelled {
		return "-"
	}
	return safe(p.SeatNumber, "-")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
