package social

import "time"

// User is the public projection of a stored user. The password digest is never
// selected into it, so no read path can serve it.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Comment struct {
	Content   string    `json:"content"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Like struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Post struct {
	ID        string    `json:"_id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	ImgURL    *string   `json:"imgUrl"`
	Tags      []string  `json:"tags"`
	Comments  []Comment `json:"comments"`
	Likes     []Like    `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    *User     `json:"Author,omitempty"`
}

type UserProfile struct {
	User
	Followings []User `json:"Followings"`
	Followers  []User `json:"Followers"`
	Posts      []Post `json:"Posts"`
}

type AddPostRequest struct {
	Content string   `json:"content"`
	ImgURL  *string  `json:"imgUrl"`
	Tags    []string `json:"tags"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type FollowRequest struct {
	FollowingID string `json:"followingId"`
}

const (
	CommentSuccess  = "Comment success"
	LikeSuccess     = "Like success"
	UnlikeSuccess   = "Unlike success"
	FollowSuccess   = "Follow Success"
	UnfollowSuccess = "Unfollow Success"
)
