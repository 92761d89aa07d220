package models

// User is the account record. Relation lists hold opaque record keys, never
// embedded documents, so each entity's lifetime is managed independently.
type User struct {
	ID           string   `bson:"_id" json:"id"`
	Username     string   `bson:"username" json:"username"`
	PasswordHash string   `bson:"passwordHash" json:"-"`
	PostIDs      []string `bson:"postIds" json:"postIds"`
	CommentIDs   []string `bson:"commentIds" json:"commentIds"`
	LikedPostIDs []string `bson:"likedPostIds" json:"likedPostIds"`
	FollowerIDs  []string `bson:"followerIds" json:"followerIds"`
	FollowingIDs []string `bson:"followingIds" json:"followingIds"`
	CreatedAt    int64    `bson:"createdAt" json:"createdAt"`
	Version      int64    `bson:"version" json:"-"`
}

// Clone returns a deep copy so a mutation can be prepared off a snapshot
// without aliasing the stored slices.
func (u *User) Clone() *User {
	cp := *u
	cp.PostIDs = append([]string(nil), u.PostIDs...)
	cp.CommentIDs = append([]string(nil), u.CommentIDs...)
	cp.LikedPostIDs = append([]string(nil), u.LikedPostIDs...)
	cp.FollowerIDs = append([]string(nil), u.FollowerIDs...)
	cp.FollowingIDs = append([]string(nil), u.FollowingIDs...)
	return &cp
}
