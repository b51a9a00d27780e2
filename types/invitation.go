package types

import "encoding/json"

// Resolution is the terminal state of a group invitation.
type Resolution string

const (
	ResolutionAccepted Resolution = "accepted"
	ResolutionRejected Resolution = "rejected"
)

// Invitation is the entity a group_invite notification points at through its
// related id.
type Invitation struct {
	ID        FlexString `json:"id"`
	GroupID   FlexString `json:"group_id"`
	InviterID FlexString `json:"inviter_id,omitempty"`
	InviteeID FlexString `json:"invitee_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// InviteRequest is the body of POST /groups/{groupId}/invite.
type InviteRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// InviteResponse is the answer of POST /groups/{groupId}/invite.
type InviteResponse struct {
	Invitation Invitation `json:"invitation"`
}

// InvitationResult is the answer of POST /group-invitations/{id}/accept. The
// group is left raw: refreshing group state belongs to the caller.
type InvitationResult struct {
	Success bool            `json:"success"`
	Group   json.RawMessage `json:"group,omitempty"`
}
