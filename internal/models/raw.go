// Package models defines the records exchanged with the Cancheito
// realtime store and the normalized view models served by the
// back-office.
//
// The store is owned by the consumer-facing app: wire field names and
// enum literals are its Spanish names and must not be renamed here.
package models

// Store paths of the three collections, relative to the database root.
const (
	PathUsers        = "Usuarios"
	PathOffers       = "ofertas"
	PathPostulations = "postulaciones"
)

// RawUser is a user record as stored under /Usuarios/{id}.
// Every field except the identity ones may be absent.
type RawUser struct {
	UID            string       `json:"uid,omitempty"`
	FullName       string       `json:"nombre_completo,omitempty"`
	Email          string       `json:"email,omitempty"`
	RegisteredAt   int64        `json:"tiempo_registro,omitempty"` // epoch ms
	ProfileURL     string       `json:"fotoPerfilUrl,omitempty"`
	Verified       bool         `json:"usuario_verificado,omitempty"`
	Experience     string       `json:"experiencia,omitempty"`
	Education      string       `json:"formacion,omitempty"`
	UserType       string       `json:"tipoUsuario,omitempty"`
	Location       string       `json:"ubicacion,omitempty"`
	CVURL          string       `json:"cvUrl,omitempty"`
	AccountState   AccountState `json:"estadoCuenta,omitempty"`
	CommercialName string       `json:"nombreComercial,omitempty"`
	Industry       string       `json:"rubro,omitempty"`
	Description    string       `json:"descripcion,omitempty"`
}

// RawOffer is a job offer as stored under /ofertas/{id}.
type RawOffer struct {
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"cargo,omitempty"`
	CreatedAt   int64       `json:"createdAt,omitempty"` // epoch ms
	Description string      `json:"descripcion,omitempty"`
	EmployerID  string      `json:"employerId,omitempty"`
	Status      OfferStatus `json:"estado,omitempty"`
	Modality    string      `json:"modalidad,omitempty"`
	Payment     string      `json:"pago_aprox,omitempty"`
	Location    string      `json:"ubicacion,omitempty"`
	Deadline    int64       `json:"fecha_limite,omitempty"` // epoch ms, 0 = none
}

// RawPostulation is an application as stored under /postulaciones/{id}.
type RawPostulation struct {
	ID          string            `json:"id,omitempty"`
	ApplicantID string            `json:"postulanteId,omitempty"`
	OfferID     string            `json:"offerId,omitempty"`
	AppliedAt   int64             `json:"fechaPostulacion,omitempty"` // epoch ms
	Status      PostulationStatus `json:"estado_postulacion,omitempty"`
}
