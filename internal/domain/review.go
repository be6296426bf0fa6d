package domain

import "time"

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "Pending"
	ReviewApproved ReviewStatus = "Approved"
	ReviewRejected ReviewStatus = "Rejected"
)

type Review struct {
	ID        string       `json:"id"`
	ProductID string       `json:"-"`
	Name      string       `json:"name"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	Status    ReviewStatus `json:"-"`
	CreatedAt time.Time    `json:"date"`
}
