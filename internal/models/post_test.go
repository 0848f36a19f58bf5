package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostID_UnmarshalLegacyNumbers(t *testing.T) {
	var posts []Post
	raw := `[{"id":1699999999999,"username":"a","content":"x","isDraft":false},{"id":"abc","username":"b","content":"y","isDraft":true}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &posts))

	require.Len(t, posts, 2)
	assert.Equal(t, PostID("1699999999999"), posts[0].ID)
	assert.Equal(t, PostID("abc"), posts[1].ID)
	assert.Equal(t, StatePublished, posts[0].State())
	assert.Equal(t, StateDraft, posts[1].State())
}

func TestPostID_RejectsObjects(t *testing.T) {
	var p Post
	assert.Error(t, json.Unmarshal([]byte(`{"id":{"x":1}}`), &p))
}

func TestPost_OmitsAbsentDisplayMetadata(t *testing.T) {
	b, err := json.Marshal(Post{ID: "1", Username: "a", Content: "c"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","username":"a","content":"c","isDraft":false}`, string(b))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    PostState
		action  PostAction
		to      PostState
		changed bool
	}{
		{"archive published", StatePublished, ActionArchive, StateDraft, true},
		{"archive draft is a no-op", StateDraft, ActionArchive, StateDraft, false},
		{"restore draft", StateDraft, ActionRestore, StatePublished, true},
		{"restore published is a no-op", StatePublished, ActionRestore, StatePublished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, changed, err := Transition(tt.from, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.to, to)
			assert.Equal(t, tt.changed, changed)
		})
	}

	_, _, err := Transition(StatePublished, PostAction("delete"))
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestParsePostAction(t *testing.T) {
	a, err := ParsePostAction("restore")
	require.NoError(t, err)
	assert.Equal(t, ActionRestore, a)

	_, err = ParsePostAction("publish")
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestRemotePost_ToPostPrefersContent(t *testing.T) {
	var records []RemotePost
	raw := `[{"id":"1","username":"a","content":"new"},{"id":"2","username":"b","postContent":"legacy"},{"id":"3","username":"c","content":"both","postContent":"ignored"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &records))

	assert.Equal(t, "new", records[0].ToPost().Content)
	assert.Equal(t, "legacy", records[1].ToPost().Content)
	assert.Equal(t, "both", records[2].ToPost().Content)
	assert.False(t, records[1].ToPost().IsDraft)
}

func TestErrorHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewNotFoundError("post", "x"))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, 404, StatusFor(wrapped))
	assert.Equal(t, 400, StatusFor(NewValidationError("bad")))
	assert.Equal(t, 401, StatusFor(NewUnauthenticatedError("who")))
	assert.Equal(t, 500, StatusFor(errors.New("boom")))
	assert.Equal(t, "", ErrorCode(nil))
}
