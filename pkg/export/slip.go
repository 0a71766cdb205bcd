package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// SlipData carries everything printed on a provisional admission slip.
type SlipData struct {
	StudentID         string
	ApplicationNumber string
	Name              string
	FatherName        string
	Department        string
	Course            string
	Program           string
	Email             string
	Mobile            string
	RegistrationDate  time.Time

	// Collected marks which checklist documents were handed in, keyed by
	// verification key.
	Collected map[string]bool
}

// slipChecklist is the printed document checklist, in row order.
var slipChecklist = []struct {
	label string
	key   string
}{
	{"PAO (Provisional Admission Order)", "pao"},
	{"10th Marks Card", "10th_marksheet"},
	{"12th Marks Card", "12th_marksheet"},
	{"Equivalence Certificate", "equivalence_certificate"},
	{"Caste Cum Income Certificate", "caste_certificate"},
	{"Transfer Certificate", "transfer_certificate"},
	{"Migration Certificate", "migration_certificate"},
	{"6 Passport Size Photographs", "passport_photos"},
	{"PAN Card Copy", "pan_card"},
	{"Aadhar Card Copy", "aadhar_card"},
}

// entryModes are the admission channels boxed at the top of the slip.
var entryModes = []string{"JET", "SCR", "MGMT", "UNI-GAUGE", "JEE"}

// SlipExporter renders provisional admission slips.
type SlipExporter struct {
	collegeName string
}

// NewSlipExporter constructs a slip exporter branded with the college name.
func NewSlipExporter(collegeName string) *SlipExporter {
	if collegeName == "" {
		collegeName = "Jain University"
	}
	return &SlipExporter{collegeName: collegeName}
}

// Render produces the admission slip PDF bytes.
func (e *SlipExporter) Render(data SlipData) ([]byte, error) {
	if data.StudentID == "" {
		return nil, fmt.Errorf("slip requires a student id")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, e.collegeName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Faculty of Engineering and Technology", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "PROVISIONAL ADMISSION SLIP", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	e.entryModeRow(pdf)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "ACKNOWLEDGEMENT", "", 1, "C", false, 0, "")
	pdf.Ln(1)

	regDate := data.RegistrationDate
	if regDate.IsZero() {
		regDate = time.Now()
	}

	course := data.Course
	if course == "" {
		course = data.Program
	}
	if course == "" {
		course = data.Department
	}

	father := data.FatherName
	if father == "" {
		father = "____________________"
	}

	pdf.SetFont("Arial", "", 11)
	intro := fmt.Sprintf(
		"Received application (No. %s) along with the documents listed below from "+
			"Mr/Ms %s, son/daughter of %s, seeking provisional admission to the %s programme "+
			"for the academic year %d.",
		data.ApplicationNumber, data.Name, father, course, regDate.Year())
	pdf.MultiCell(0, 6, intro, "", "J", false)
	pdf.Ln(3)

	e.detailRows(pdf, data, regDate)
	pdf.Ln(4)

	e.checklistTable(pdf, data.Collected)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, "The above documents have been received and will be scrutinised during "+
		"verification. Originals must be produced on demand.", "", "J", false)
	pdf.Ln(8)

	// Signature row.
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(90, 6, "Signature of the Candidate", "T", 0, "C", false, 0, "")
	pdf.CellFormat(0, 6, "Signature of the Admission Officer", "T", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(0, 4, "Note: This slip is provisional and does not by itself confirm admission. "+
		"Admission is subject to verification of all original documents and payment of the "+
		"prescribed fees.", "", "L", false)

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on %s", time.Now().Format("02 Jan 2006 15:04")), "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render admission slip: %w", err)
	}
	return buf.Bytes(), nil
}

// entryModeRow prints the admission-channel checkboxes across the page.
func (e *SlipExporter) entryModeRow(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(30, 7, "Mode of Entry:", "", 0, "L", false, 0, "")
	cellWidth := 150.0 / float64(len(entryModes))
	for _, mode := range entryModes {
		pdf.CellFormat(6, 7, "", "1", 0, "C", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(cellWidth-6, 7, " "+mode, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 9)
	}
	pdf.Ln(-1)
}

func (e *SlipExporter) detailRows(pdf *gofpdf.Fpdf, data SlipData, regDate time.Time) {
	rows := [][2]string{
		{"Student ID", data.StudentID},
		{"Application Number", data.ApplicationNumber},
		{"Name", data.Name},
		{"Department", data.Department},
		{"Email", data.Email},
		{"Mobile", data.Mobile},
		{"Registration Date", regDate.Format("02 Jan 2006")},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(125, 7, row[1], "1", 1, "L", false, 0, "")
	}
}

// checklistTable prints the document checklist with a tick for every
// collected item. ZapfDingbats renders "4" as a check mark.
func (e *SlipExporter) checklistTable(pdf *gofpdf.Fpdf, collected map[string]bool) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(12, 7, "Sl.", "1", 0, "C", false, 0, "")
	pdf.CellFormat(138, 7, "Document", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Collected", "1", 1, "C", false, 0, "")

	for i, item := range slipChecklist {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(138, 7, item.label, "1", 0, "L", false, 0, "")
		if collected[item.key] {
			pdf.SetFont("ZapfDingbats", "", 10)
			pdf.CellFormat(30, 7, "4", "1", 1, "C", false, 0, "")
		} else {
			pdf.CellFormat(30, 7, "", "1", 1, "C", false, 0, "")
		}
	}
}
