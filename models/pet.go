package models

import "time"

type Pet struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Age       uint      `json:"age"`
	OwnerID   uint      `json:"owner_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// MedicalRecord is one clinical visit entry in a pet's history.
type MedicalRecord struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PetID        uint      `json:"pet_id" gorm:"index"`
	Date         time.Time `json:"date"`
	Diagnosis    string    `json:"diagnosis" gorm:"type:text"`
	Treatment    string    `json:"treatment" gorm:"type:text"`
	Veterinarian string    `json:"veterinarian"`
	Notes        string    `json:"notes" gorm:"type:text"`
	Weight       *float64  `json:"weight"`      // kg
	Temperature  *float64  `json:"temperature"` // °C
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Vaccine struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	PetID            uint       `json:"pet_id" gorm:"index"`
	VaccineName      string     `json:"vaccine_name"`
	DateAdministered time.Time  `json:"date_administered"`
	NextDoseDate     *time.Time `json:"next_dose_date"`
	Veterinarian     string     `json:"veterinarian"`
	BatchNumber      string     `json:"batch_number"`
	Notes            string     `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IsNextDosePending reports whether a scheduled next dose is still upcoming.
func (v *Vaccine) IsNextDosePending() bool {
	if v.NextDoseDate == nil {
		return false
	}
	return !v.NextDoseDate.Before(time.Now().Truncate(24 * time.Hour))
}
