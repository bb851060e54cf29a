package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortMembersOrdersTiersThenNames(t *testing.T) {
	ms := []MemberInfo{
		{UserID: 4, FullName: "zoe", Role: RoleMember},
		{UserID: 2, FullName: "Ben", Role: RoleAdmin},
		{UserID: 1, FullName: "Owner Person", Role: RoleOwner},
		{UserID: 3, FullName: "alice", Role: RoleAdmin},
		{UserID: 5, FullName: "Carl", Role: RoleMember},
	}
	sortMembers(ms)

	got := make([]uint64, len(ms))
	for i, m := range ms {
		got[i] = m.UserID
	}
	// Owner first, admins alphabetically (case-insensitive), then members.
	assert.Equal(t, []uint64{1, 3, 2, 5, 4}, got)
}

func TestSortMembersStableWithinEqualNames(t *testing.T) {
	ms := []MemberInfo{
		{UserID: 1, FullName: "Sam", Role: RoleMember},
		{UserID: 2, FullName: "sam", Role: RoleMember},
	}
	sortMembers(ms)
	assert.Equal(t, uint64(1), ms[0].UserID)
	assert.Equal(t, uint64(2), ms[1].UserID)
}
