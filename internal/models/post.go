// Package models contains data structures for the application's domain models.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PostID identifies a post. New posts get a UUID; stores written by older
// clients may hold millisecond timestamps, which decode to their decimal form.
type PostID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post id must be a string or number: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

// Post is the canonical post record kept in the local store.
type Post struct {
	ID       PostID `json:"id"`
	Username string `json:"username"`
	Content  string `json:"content"`
	IsDraft  bool   `json:"isDraft"`
	// Display metadata; absent values are synthesized at render time and
	// never written back.
	Timestamp string `json:"timestamp,omitempty"`
	Likes     *int   `json:"likes,omitempty"`
	Views     *int   `json:"views,omitempty"`
}

// State returns the lifecycle state derived from IsDraft.
func (p Post) State() PostState {
	if p.IsDraft {
		return StateDraft
	}
	return StatePublished
}

// LikedPost is a denormalized snapshot of a post in the liked collection.
// It does not track the source post, so it survives the post's deletion.
type LikedPost = Post
