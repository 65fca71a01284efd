package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsValidAt(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{name: "active unexpired", session: Session{Status: SessionStatusActive, ExpiresAt: now.Add(time.Minute)}, want: true},
		{name: "active without expiry", session: Session{Status: SessionStatusActive}, want: true},
		{name: "active expired", session: Session{Status: SessionStatusActive, ExpiresAt: now.Add(-time.Minute)}, want: false},
		{name: "inactive", session: Session{Status: SessionStatusInactive, ExpiresAt: now.Add(time.Minute)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.IsValidAt(now))
		})
	}
}

func TestChallenge_IsExpiredAt(t *testing.T) {
	now := time.Now()
	c := Challenge{ExpiresAt: now}

	assert.False(t, c.IsExpiredAt(now.Add(-time.Second)))
	assert.True(t, c.IsExpiredAt(now))
	assert.True(t, c.IsExpiredAt(now.Add(time.Second)))
}

func TestPermissionSet(t *testing.T) {
	set := NewPermissionSet("system:user", "", "monitor:job", "system:user")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("system:user"))
	assert.False(t, set.Has(""))
	assert.Equal(t, []string{"monitor:job", "system:user"}, set.Slice())
	assert.True(t, set.Equal(NewPermissionSet("monitor:job", "system:user")))

	var empty PermissionSet
	assert.False(t, empty.Has("system:user"))
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Slice())
}

func TestUser_Identity(t *testing.T) {
	u := User{ID: 3, Domain: "system", LoginName: "admin", Status: UserStatusActive}

	assert.True(t, u.IsActive())
	assert.Equal(t, Identity{Domain: "system", UserID: 3, LoginName: "admin"}, u.Identity())
}
