package domain

import "time"

// Donation is a single gift toward a project. Amounts are in minor units
// of Currency.
type Donation struct {
	ID         string    `json:"id" db:"id"`
	ProjectID  string    `json:"projectId" db:"project_id"`
	Amount     int64     `json:"amount" db:"amount"`
	Currency   string    `json:"currency" db:"currency"`
	DonorName  *string   `json:"donorName,omitempty" db:"donor_name"`
	DonorEmail *string   `json:"donorEmail,omitempty" db:"donor_email"`
	Message    *string   `json:"message,omitempty" db:"message"`
	Anonymous  bool      `json:"anonymous" db:"anonymous"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Public strips donor contact details for the public listing.
func (d Donation) Public() Donation {
	out := d
	out.DonorEmail = nil
	if d.Anonymous {
		out.DonorName = nil
	}
	return out
}
