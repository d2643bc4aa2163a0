// Package identity models the authenticated principal behind a request.
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tells clients and staff apart.
type Kind string

const (
	KindClient Kind = "client"
	KindStaff  Kind = "staff"
)

const clientRoleName = "user"

// Role is either the client role or a staff rights level. On the wire clients
// are encoded as the string "user" and staff as their numeric rights level.
type Role struct {
	staff       bool
	rightsLevel int64
}

// ClientRole returns the role carried by brokerage clients.
func ClientRole() Role { return Role{} }

// StaffRole returns the role of a staff member with the given rights level.
func StaffRole(level int64) Role { return Role{staff: true, rightsLevel: level} }

func (r Role) IsStaff() bool { return r.staff }

// RightsLevel is zero for clients.
func (r Role) RightsLevel() int64 { return r.rightsLevel }

func (r Role) String() string {
	if !r.staff {
		return clientRoleName
	}
	return strconv.FormatInt(r.rightsLevel, 10)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.staff {
		return json.Marshal(clientRoleName)
	}
	return json.Marshal(r.rightsLevel)
}

func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != clientRoleName {
			return fmt.Errorf("identity: unknown role %q", s)
		}
		*r = ClientRole()
		return nil
	}
	var level int64
	if err := json.Unmarshal(data, &level); err != nil {
		return fmt.Errorf("identity: role must be %q or a rights level: %w", clientRoleName, err)
	}
	if level <= 0 {
		return fmt.Errorf("identity: invalid rights level %d", level)
	}
	*r = StaffRole(level)
	return nil
}

// Identity is the resolved caller of a request.
type Identity struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Role  Role   `json:"role"`
}

// Client builds a client identity.
func Client(id int64, login string) Identity {
	return Identity{ID: id, Login: login, Role: ClientRole()}
}

// Staff builds a staff identity.
func Staff(id int64, login string, rightsLevel int64) Identity {
	return Identity{ID: id, Login: login, Role: StaffRole(rightsLevel)}
}

func (i Identity) Kind() Kind {
	if i.Role.IsStaff() {
		return KindStaff
	}
	return KindClient
}

func (i Identity) IsClient() bool { return !i.Role.IsStaff() }

func (i Identity) IsStaff() bool { return i.Role.IsStaff() }

// HasRights reports whether the identity is staff with one of the given levels.
func (i Identity) HasRights(levels ...int64) bool {
	if !i.Role.IsStaff() {
		return false
	}
	for _, l := range levels {
		if i.Role.RightsLevel() == l {
			return true
		}
	}
	return false
}
