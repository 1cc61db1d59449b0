package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Appointment statuses as stored by the booking service.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

const (
	RegistrationApproved = "approved"
	OrderCompleted       = "completed"
)

// DoctorActive is the status shown for ranked doctors; only approved
// doctors are ever ranked.
const DoctorActive = "active"

type Appointment struct {
	ID            string `gorm:"primaryKey"`
	AppointmentID string `gorm:"uniqueIndex"`
	PatientID     string `gorm:"index"`
	DoctorID      string `gorm:"index"`
	SpecialtyID   string `gorm:"index"`
	HospitalID    string `gorm:"index"`
	// Date is the calendar day of the visit (YYYY-MM-DD). It is unrelated
	// to CreatedAt, which is when the booking was made.
	Date        string `gorm:"type:varchar(10);index"`
	Slot        string
	Timezone    string
	Status      string `gorm:"index"`
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
	Payment     Payment                     `gorm:"embedded;embeddedPrefix:payment_"`
	Rating      *datatypes.JSONType[Rating] `gorm:"type:jsonb"`
}

type Payment struct {
	PlatformFee float64
	DoctorFee   float64
	Discount    float64
	Total       float64
	Status      string
	Method      string
}

type Rating struct {
	RatingScore float64   `json:"ratingScore"`
	Description string    `json:"description"`
	RatedAt     time.Time `json:"ratedAt"`
	RatedBy     string    `json:"ratedBy"`
}

type Doctor struct {
	ID                 string `gorm:"primaryKey"`
	Code               string `gorm:"uniqueIndex"`
	FullName           string
	SpecialtyIDs       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	RegistrationStatus string                      `gorm:"index"`
	AvgScore           float64
	RatingDetails      datatypes.JSONSlice[RatingDetail] `gorm:"type:jsonb"`
	AvatarURL          string
	ExperienceYears    int
	CreatedAt          time.Time
}

type RatingDetail struct {
	RatingScore   float64 `json:"ratingScore"`
	Description   string  `json:"description"`
	AppointmentID string  `json:"appointmentId,omitempty"`
}

type Patient struct {
	ID        string `gorm:"primaryKey"`
	FullName  string
	CreatedAt time.Time
}

type Specialty struct {
	ID        string `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex"`
	Name      string
	AvatarURL string
	CreatedAt time.Time
}

// OrderMapping is a settled payment for an appointment.
type OrderMapping struct {
	ID            string `gorm:"primaryKey"`
	AppointmentID string `gorm:"index"`
	Amount        float64
	Status        string `gorm:"index"`
	CreatedAt     time.Time
}

// PrimarySpecialtyID returns the first specialty reference of the doctor.
func (d Doctor) PrimarySpecialtyID() (string, bool) {
	if len(d.SpecialtyIDs) == 0 {
		return "", false
	}
	return d.SpecialtyIDs[0], true
}
