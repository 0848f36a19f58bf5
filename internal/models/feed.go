package models

import "time"

// RemotePost is a post as served by GET /posts. Older feed writers used
// postContent instead of content, so both are accepted on the wire.
type RemotePost struct {
	ID          PostID    `json:"id" bson:"_id"`
	Username    string    `json:"username" bson:"username"`
	Content     string    `json:"content,omitempty" bson:"content"`
	PostContent string    `json:"postContent,omitempty" bson:"postContent,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	Likes       *int      `json:"likes,omitempty" bson:"likes,omitempty"`
	Views       *int      `json:"views,omitempty" bson:"views,omitempty"`
	CreatedAt   time.Time `json:"-" bson:"createdAt"`
}

// ToPost maps a feed record onto the canonical Post. Remote posts are always
// published.
func (r RemotePost) ToPost() Post {
	content := r.Content
	if content == "" {
		content = r.PostContent
	}
	return Post{
		ID:        r.ID,
		Username:  r.Username,
		Content:   content,
		Timestamp: r.Timestamp,
		Likes:     r.Likes,
		Views:     r.Views,
	}
}

// TopCreator is one leaderboard row served by GET /top/user.
type TopCreator struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Views       int    `json:"views"`
	Description string `json:"description"`
}

// User is an account in the backend user directory.
type User struct {
	Username  string    `json:"username" bson:"_id"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// AuthResponse is returned by POST /auth/login and POST /auth/register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
