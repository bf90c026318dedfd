package models

import "gorm.io/gorm"

// Review is standalone rider feedback; it has no lifecycle coupling to
// any parcel.
type Review struct {
	gorm.Model
	RiderEmail    string `json:"riderEmail" gorm:"column:rider_email;index;not null"`
	ReviewerEmail string `json:"reviewerEmail" gorm:"column:reviewer_email;not null"`
	Rating        int    `json:"rating" gorm:"column:rating;not null"`
	Comment       string `json:"comment" gorm:"column:comment"`
}

// TableName specifies the table name
func (Review) TableName() string {
	return "reviews"
}
