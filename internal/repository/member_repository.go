package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
)

// Member role labels. These are computed per request, never stored: the owner
// is whoever the group row points at, admins come from users.role, everyone
// else is a plain member.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// MemberInfo is a member row joined with its computed role label.
type MemberInfo struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ErrAlreadyMember is returned when a user joins a group twice. The members
// table carries a unique key on (group_id, user_id) so the second insert is
// rejected rather than producing a duplicate row.
var ErrAlreadyMember = errors.New("already a member")

// ErrMemberNotFound is returned when a leave targets no existing row.
var ErrMemberNotFound = errors.New("member not found")

// MemberRepo encapsulates the members join table.
type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// Join inserts a member row with the denormalized display name.
func (r *MemberRepo) Join(ctx context.Context, groupID, userID uint64, fullName string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO members (group_id, user_id, full_name) VALUES (?,?,?)",
		groupID, userID, fullName)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

// Leave deletes the member row.
func (r *MemberRepo) Leave(ctx context.Context, groupID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// IsEffectiveMember is the single place the membership rule lives: a user
// belongs to a group when a member row exists OR when they hold the admin
// role. Every membership check in the app goes through here.
func (r *MemberRepo) IsEffectiveMember(ctx context.Context, groupID, userID uint64, role string) (bool, error) {
	if role == RoleAdmin {
		return true, nil
	}
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM members WHERE group_id = ? AND user_id = ? LIMIT 1",
		groupID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of distinct member user ids in a group.
func (r *MemberRepo) Count(ctx context.Context, groupID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT user_id) FROM members WHERE group_id = ?", groupID).Scan(&n)
	return n, err
}

// ListWithRoles returns the group's members with computed role labels,
// ordered owner first, then admins, then members, alphabetically inside each
// tier.
func (r *MemberRepo) ListWithRoles(ctx context.Context, groupID, ownerID uint64) ([]MemberInfo, error) {
	const q = `SELECT m.user_id, m.full_name, u.role
	           FROM members m JOIN users u ON u.id = m.user_id
	           WHERE m.group_id = ?`
	rows, err := r.db.QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemberInfo
	for rows.Next() {
		var (
			m        MemberInfo
			userRole string
		)
		if err := rows.Scan(&m.UserID, &m.FullName, &userRole); err != nil {
			return nil, err
		}
		switch {
		case m.UserID == ownerID:
			m.Role = RoleOwner
		case userRole == RoleAdmin:
			m.Role = RoleAdmin
		default:
			m.Role = RoleMember
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortMembers(out)
	return out, nil
}

// sortMembers orders owner, admins, members; names compared case-insensitively
// within a tier.
func sortMembers(ms []MemberInfo) {
	tier := func(role string) int {
		switch role {
		case RoleOwner:
			return 0
		case RoleAdmin:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(ms, func(i, j int) bool {
		ti, tj := tier(ms[i].Role), tier(ms[j].Role)
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(ms[i].FullName) < strings.ToLower(ms[j].FullName)
	})
}
