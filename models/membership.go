package models

import "time"

const (
	PlanBasic   = "BASIC"
	PlanPremium = "PREMIUM"
	PlanVIP     = "VIP"

	MembershipActive    = "ACTIVE"
	MembershipExpired   = "EXPIRED"
	MembershipCancelled = "CANCELLED"
)

type Membership struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	PlanName  string    `json:"plan_name"` // BASIC, PREMIUM, VIP
	Status    string    `json:"status" gorm:"default:'ACTIVE'"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Price     float64   `json:"price"`
	AutoRenew bool      `json:"auto_renew"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (m *Membership) IsExpired() bool {
	return time.Now().After(m.EndDate)
}

// DaysRemaining is zero for anything but an active, unexpired membership.
func (m *Membership) DaysRemaining() int {
	if m.Status != MembershipActive {
		return 0
	}
	days := int(time.Until(m.EndDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Refresh flips an active membership to expired once the end date passes.
func (m *Membership) Refresh() {
	if m.Status == MembershipActive && m.IsExpired() {
		m.Status = MembershipExpired
	}
}
