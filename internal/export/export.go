// Package export renders date-ranged reports over the three
// collections as CSV or XLSX, matching the layout the back office
// always produced: a Usuarios, an Ofertas and a Postulaciones section
// with fixed Spanish headers.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cancheito/backoffice/internal/models"
)

// ErrNoData is returned when the selected range contains no records.
var ErrNoData = errors.New("no data to export in the selected date range")

var userHeaders = []string{"ID Usuario", "Nombre Completo", "Email", "Fecha Registro", "Tipo Usuario", "Estado Cuenta", "Verificado", "Ubicación", "Formación", "Experiencia"}
var offerHeaders = []string{"ID Oferta", "Cargo", "ID Publicador", "Nombre Publicador", "Email Publicador", "Fecha Publicación", "Estado Oferta", "Ubicación", "Modalidad", "Pago Aprox."}
var postulationHeaders = []string{"ID Postulación", "ID Postulante", "Nombre Postulante", "Email Postulante", "ID Oferta", "Título Oferta", "ID Publicador", "Nombre Publicador", "Fecha Postulación", "Estado Postulación"}

// Report is a range-filtered snapshot ready for rendering.
type Report struct {
	From, To time.Time

	Users        []models.User
	Offers       []models.JobOffer
	Postulations []models.Postulation
}

// Build filters the lists to records dated within [from, to],
// inclusive of both whole days. Records without a known date never
// match.
func Build(users []models.User, offers []models.JobOffer, postulations []models.Postulation, from, to time.Time) Report {
	start := startOfDay(from)
	end := startOfDay(to).AddDate(0, 0, 1)

	r := Report{From: from, To: to}
	for _, u := range users {
		if inRange(u.RegisteredUnix, start, end) {
			r.Users = append(r.Users, u)
		}
	}
	for _, o := range offers {
		if inRange(o.PostedUnix, start, end) {
			r.Offers = append(r.Offers, o)
		}
	}
	for _, p := range postulations {
		if inRange(p.AppliedUnix, start, end) {
			r.Postulations = append(r.Postulations, p)
		}
	}
	return r
}

// Empty reports whether the range matched nothing.
func (r Report) Empty() bool {
	return len(r.Users) == 0 && len(r.Offers) == 0 && len(r.Postulations) == 0
}

// Filename is the canonical download name for the report.
func (r Report) Filename(ext string) string {
	return fmt.Sprintf("reporte_%s_a_%s.%s",
		r.From.Format(models.DateFormat), r.To.Format(models.DateFormat), ext)
}

func (r Report) userRows() [][]string {
	rows := make([][]string, 0, len(r.Users))
	for _, u := range r.Users {
		rows = append(rows, []string{
			u.ID, u.FullName, u.Email, u.RegistrationDate, u.UserType,
			string(u.AccountState), strconv.FormatBool(u.IsVerified),
			u.Location, u.Education, u.Experience,
		})
	}
	return rows
}

func (r Report) offerRows() [][]string {
	rows := make([][]string, 0, len(r.Offers))
	for _, o := range r.Offers {
		rows = append(rows, []string{
			o.ID, o.Title, o.Employer.ID, o.Employer.Name, o.Employer.Email,
			o.PostedDate, o.Status, o.Location, o.Modality, o.Payment,
		})
	}
	return rows
}

func (r Report) postulationRows() [][]string {
	rows := make([][]string, 0, len(r.Postulations))
	for _, p := range r.Postulations {
		rows = append(rows, []string{
			p.ID, p.Applicant.ID, p.Applicant.Name, p.Applicant.Email,
			p.Offer.ID, p.Offer.Title, p.Offer.Employer.ID, p.Offer.Employer.Name,
			p.PostulationDate, p.Status,
		})
	}
	return rows
}

// CSV renders the three sections into one UTF-8 document. The leading
// BOM keeps spreadsheet imports from mangling accented characters.
func (r Report) CSV() ([]byte, error) {
	if r.Empty() {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	sections := []struct {
		title   string
		headers []string
		rows    [][]string
	}{
		{"Usuarios", userHeaders, r.userRows()},
		{"Ofertas", offerHeaders, r.offerRows()},
		{"Postulaciones", postulationHeaders, r.postulationRows()},
	}

	for i, s := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(s.title + "\n")

		w := csv.NewWriter(&buf)
		if err := w.Write(s.headers); err != nil {
			return nil, err
		}
		if err := w.WriteAll(s.rows); err != nil {
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// XLSX renders the three sections as separate sheets with a styled
// header row and columns sized to their content.
func (r Report) XLSX() ([]byte, error) {
	if r.Empty() {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"D9EAD3"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Style: 1}},
	})
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]string
	}{
		{"Usuarios", userHeaders, r.userRows()},
		{"Ofertas", offerHeaders, r.offerRows()},
		{"Postulaciones", postulationHeaders, r.postulationRows()},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}

		if err := f.SetSheetRow(s.name, "A1", &s.headers); err != nil {
			return nil, err
		}
		for j, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return nil, err
			}
		}

		lastCol, err := excelize.ColumnNumberToName(len(s.headers))
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(s.name, "A1", lastCol+"1", headerStyle); err != nil {
			return nil, err
		}

		for col := range s.headers {
			width := len([]rune(s.headers[col]))
			for _, row := range s.rows {
				if l := len([]rune(row[col])); l > width {
					width = l
				}
			}
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(s.name, name, name, float64(width)+2); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inRange(unixMilli int64, start, end time.Time) bool {
	if unixMilli <= 0 {
		return false
	}
	t := time.UnixMilli(unixMilli)
	return !t.Before(start) && t.Before(end)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
