package models

// Comment belongs to the Post referenced by ParentID and is counted in that
// post's AmtComments.
type Comment struct {
	ID        string `bson:"_id" json:"id"`
	ParentID  string `bson:"parentId" json:"parentId"`
	Body      string `bson:"body" json:"body"`
	Author    string `bson:"author" json:"author"`
	Media     string `bson:"media,omitempty" json:"media,omitempty"`
	CreatedAt int64  `bson:"createdAt" json:"createdAt"`
	Version   int64  `bson:"version" json:"-"`
}

func (c *Comment) Clone() *Comment {
	cp := *c
	return &cp
}
