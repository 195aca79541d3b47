package review

import "time"

// Review is one buyer's rating of a crop listing.
type Review struct {
	ID        int64     `db:"id" json:"id"`
	CropID    int64     `db:"crop_id" json:"crop_id"`
	BuyerID   int64     `db:"buyer_id" json:"buyer_id"`
	BuyerName string    `db:"buyer_name" json:"buyer_name"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateInput struct {
	CropID  int64  `json:"crop_id" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

type ListResult struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	Count         int      `json:"count"`
}
