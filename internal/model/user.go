package model

import "time"

// Roles stored in the JWT "role" claim and users.role column.
const (
	RoleOrg    = "ORG"
	RoleClient = "CLIENT"
)

// Confirmation-code purposes. Creating a new code invalidates any
// prior live code of the same purpose for that user.
const (
	CodePurposeActivation = "activation"
	CodePurposeRestore    = "restore"
)

// User is an authentication account. Both organizations and customers
// authenticate the same way; the role decides which routes open up.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login identifier, lower-cased.
//  PasswordHash – bcrypt hash.
//  Role         – RoleOrg or RoleClient.
//  FullName     – contact name used for reservation snapshots.
//  Phone        – contact phone used for SMS notification.
//  CreatedAt    – registration timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	FullName     string    // users.full_name
	Phone        string    // users.phone
	CreatedAt    time.Time // users.created_at
}

// Organization is the one-to-one partner profile of an ORG user.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning account.
//  OrgName   – legal or display name.
//  BIN       – business identification number.
//  Moderated – whether the partner passed moderation.
type Organization struct {
	ID        uint64 // organizations.id
	UserID    uint64 // organizations.user_id
	OrgName   string // organizations.org_name
	BIN       string // organizations.bin
	Moderated bool   // organizations.moderated
}

// ConfirmationCode is an ephemeral 6-digit one-time code gating
// reservation approval. Codes are superseded by re-issuance and
// deleted on successful validation; there is no server-side TTL.
type ConfirmationCode struct {
	ID        uint64    // confirmation_codes.id
	UserID    uint64    // confirmation_codes.user_id
	Purpose   string    // confirmation_codes.purpose
	Code      string    // confirmation_codes.code
	CreatedAt time.Time // confirmation_codes.created_at
}
