package models

// Placeholder values substituted when a referenced record or field is
// missing. Downstream code relies on these being fixed strings; no view
// model field is ever left empty where one of these applies.
const (
	PlaceholderUnknownUser      = "Usuario Desconocido"
	PlaceholderUnknownPublisher = "Publicador Desconocido"
	PlaceholderUnknownOffer     = "Oferta Desconocida"
	PlaceholderNoEmail          = "Email no disponible"
	PlaceholderUnknownDate      = "Fecha desconocida"
	PlaceholderNoName           = "Sin nombre"
	PlaceholderMissingEmail     = "Sin email"
	PlaceholderUnspecified      = "No especificado"
)

// Display formats for normalized date fields.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04"
	DayLabelFormat = "Jan 2" // chart axis / prediction labels
)

// User is the fully-populated view of a RawUser. Every field is set;
// absent source data resolves to the documented placeholder.
type User struct {
	ID               string       `json:"id"`
	FullName         string       `json:"fullName"`
	Email            string       `json:"email"`
	RegistrationDate string       `json:"registrationDate"`
	ProfileURL       string       `json:"profileUrl"`
	IsVerified       bool         `json:"isVerified"`
	Experience       string       `json:"experience"`
	Education        string       `json:"education"`
	UserType         string       `json:"userType"`
	Location         string       `json:"location"`
	CVURL            string       `json:"cvUrl"`
	AccountState     AccountState `json:"accountState"`
	CommercialName   string       `json:"commercialName,omitempty"`
	Industry         string       `json:"industry,omitempty"`
	Description      string       `json:"description,omitempty"`

	// RegisteredUnix keeps the source epoch-ms timestamp for ordering.
	// Zero means unknown and sorts last.
	RegisteredUnix int64 `json:"-"`
}

// EmployerProfile is the resolved snapshot of an offer's owner. It is a
// copy taken at join time, recomputed whenever the user record changes.
type EmployerProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// ApplicantProfile is the resolved snapshot of a postulation's author.
type ApplicantProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// JobOffer is the fully-populated view of a RawOffer with its employer
// resolved.
type JobOffer struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Employer   EmployerProfile `json:"employer"`
	Location   string          `json:"location"`
	Modality   string          `json:"modality"`
	Payment    string          `json:"approxPayment"`
	PostedDate string          `json:"postedDate"`
	Deadline   string          `json:"deadline,omitempty"`
	Status     string          `json:"status"` // "Activa" | "Cerrada"

	PostedUnix   int64       `json:"-"`
	DeadlineUnix int64       `json:"-"`
	State        OfferStatus `json:"-"`
}

// Postulation is the fully-populated view of a RawPostulation: a
// two-level join embedding the resolved offer, which in turn embeds the
// resolved employer.
type Postulation struct {
	ID              string           `json:"id"`
	Applicant       ApplicantProfile `json:"applicant"`
	Offer           JobOffer         `json:"offer"`
	PostulationDate string           `json:"postulationDate"`
	Status          string           `json:"postulationStatus"`

	AppliedUnix int64 `json:"-"`
}
