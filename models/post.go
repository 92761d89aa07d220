package models

// Post carries denormalized counters (AmtLikes, AmtComments) kept in sync by
// the counter ledger, and a denormalized Author username copied at creation.
type Post struct {
	ID          string `bson:"_id" json:"id"`
	Body        string `bson:"body" json:"body"`
	Author      string `bson:"author" json:"author"`
	Media       string `bson:"media,omitempty" json:"media,omitempty"`
	AmtLikes    int    `bson:"amtLikes" json:"amtLikes"`
	AmtComments int    `bson:"amtComments" json:"amtComments"`
	CreatedAt   int64  `bson:"createdAt" json:"createdAt"`
	Version     int64  `bson:"version" json:"-"`
}

func (p *Post) Clone() *Post {
	cp := *p
	return &cp
}
