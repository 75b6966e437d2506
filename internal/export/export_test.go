package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cancheito/backoffice/internal/models"
)

var (
	rangeFrom = time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local)
	rangeTo   = time.Date(2025, 7, 31, 0, 0, 0, 0, time.Local)
)

func sampleUser(id string, registered time.Time) models.User {
	return models.User{
		ID:               id,
		FullName:         "Lucia Quispe",
		Email:            "lucia@example.com",
		RegistrationDate: registered.Format(models.DateFormat),
		UserType:         "postulante",
		AccountState:     models.AccountStateActive,
		IsVerified:       true,
		Location:         "La Paz",
		Education:        "Secundaria",
		Experience:       "2 años",
		RegisteredUnix:   registered.UnixMilli(),
	}
}

func TestBuild_FiltersByRange(t *testing.T) {
	users := []models.User{
		sampleUser("in", time.Date(2025, 7, 15, 10, 0, 0, 0, time.Local)),
		sampleUser("before", time.Date(2025, 6, 30, 23, 0, 0, 0, time.Local)),
		sampleUser("after", time.Date(2025, 8, 1, 0, 30, 0, 0, time.Local)),
		{ID: "undated", RegistrationDate: models.PlaceholderUnknownDate},
	}
	// Both boundary days are included whole.
	offers := []models.JobOffer{
		{ID: "first-day", PostedUnix: time.Date(2025, 7, 1, 0, 0, 1, 0, time.Local).UnixMilli()},
		{ID: "last-day", PostedUnix: time.Date(2025, 7, 31, 23, 59, 0, 0, time.Local).UnixMilli()},
	}

	r := Build(users, offers, nil, rangeFrom, rangeTo)

	require.Len(t, r.Users, 1)
	require.Equal(t, "in", r.Users[0].ID)
	require.Len(t, r.Offers, 2)
	require.False(t, r.Empty())
}

func TestBuild_EmptyRange(t *testing.T) {
	r := Build(nil, nil, nil, rangeFrom, rangeTo)
	require.True(t, r.Empty())

	_, err := r.CSV()
	require.ErrorIs(t, err, ErrNoData)
	_, err = r.XLSX()
	require.ErrorIs(t, err, ErrNoData)
}

func TestReport_Filename(t *testing.T) {
	r := Build(nil, nil, nil, rangeFrom, rangeTo)
	require.Equal(t, "reporte_2025-07-01_a_2025-07-31.csv", r.Filename("csv"))
	require.Equal(t, "reporte_2025-07-01_a_2025-07-31.xlsx", r.Filename("xlsx"))
}

func TestCSV_SectionsAndRows(t *testing.T) {
	registered := time.Date(2025, 7, 15, 10, 0, 0, 0, time.Local)
	users := []models.User{sampleUser("u1", registered)}
	offers := []models.JobOffer{{
		ID:    "o1",
		Title: "Albañil",
		Employer: models.EmployerProfile{
			ID: "e1", Name: "Carlos Mamani", Email: "carlos@example.com",
		},
		PostedDate: "2025-07-10",
		Status:     "Activa",
		Location:   "El Alto",
		Modality:   "Presencial",
		Payment:    "100 Bs/día",
		PostedUnix: time.Date(2025, 7, 10, 9, 0, 0, 0, time.Local).UnixMilli(),
	}}

	r := Build(users, offers, nil, rangeFrom, rangeTo)
	out, err := r.CSV()
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, []byte("\ufeff")), "starts with a BOM")

	text := string(out)
	require.Contains(t, text, "Usuarios\n")
	require.Contains(t, text, "Ofertas\n")
	require.Contains(t, text, "Postulaciones\n")
	require.Contains(t, text, strings.Join(userHeaders, ","))
	require.Contains(t, text, "u1,Lucia Quispe,lucia@example.com,2025-07-15,postulante,Activa,true,La Paz,Secundaria,2 años")
	require.Contains(t, text, "o1,Albañil,e1,Carlos Mamani,carlos@example.com,2025-07-10,Activa,El Alto,Presencial,100 Bs/día")
}

func TestXLSX_SheetsAndHeaders(t *testing.T) {
	registered := time.Date(2025, 7, 15, 10, 0, 0, 0, time.Local)
	applied := time.Date(2025, 7, 16, 14, 30, 0, 0, time.Local)

	users := []models.User{sampleUser("u1", registered)}
	postulations := []models.Postulation{{
		ID:              "p1",
		Applicant:       models.ApplicantProfile{ID: "u1", Name: "Lucia Quispe", Email: "lucia@example.com"},
		Offer:           models.JobOffer{ID: "o1", Title: "Albañil", Employer: models.EmployerProfile{ID: "e1", Name: "Carlos Mamani"}},
		PostulationDate: applied.Format(models.DateTimeFormat),
		Status:          "Enviada",
		AppliedUnix:     applied.UnixMilli(),
	}}

	r := Build(users, nil, postulations, rangeFrom, rangeTo)
	out, err := r.XLSX()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Usuarios", "Ofertas", "Postulaciones"}, f.GetSheetList())

	cell, err := f.GetCellValue("Usuarios", "A1")
	require.NoError(t, err)
	require.Equal(t, "ID Usuario", cell)

	cell, err = f.GetCellValue("Usuarios", "B2")
	require.NoError(t, err)
	require.Equal(t, "Lucia Quispe", cell)

	cell, err = f.GetCellValue("Postulaciones", "F2")
	require.NoError(t, err)
	require.Equal(t, "Albañil", cell)

	// Empty section still renders its header row.
	cell, err = f.GetCellValue("Ofertas", "A1")
	require.NoError(t, err)
	require.Equal(t, "ID Oferta", cell)
}
