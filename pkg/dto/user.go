package dto

// UserCreate is a registration request. Password is plain text.
type UserCreate struct {
	Login    string
	Email    string
	Password string
}

// UserUpdate is a staff edit of a client. Nil or blank fields are left alone.
type UserUpdate struct {
	Login                *string
	Email                *string
	Password             *string
	VerificationStatusID *int64
	BlockStatusID        *int64
}

// StaffCreate registers a new staff member. Password is plain text.
type StaffCreate struct {
	Login              string
	Password           string
	ContractNumber     string
	RightsLevelID      int64
	EmploymentStatusID int64
}

// StaffUpdate edits a staff member. Nil or blank fields are left alone.
type StaffUpdate struct {
	Login              *string
	Password           *string
	ContractNumber     *string
	RightsLevelID      *int64
	EmploymentStatusID *int64
}

// StaffRead is a staff profile with its lookups resolved.
type StaffRead struct {
	ID                 int64  `json:"id"`
	Login              string `json:"login"`
	ContractNumber     string `json:"contract_number"`
	RightsLevelID      int64  `json:"rights_level_id"`
	RightsLevel        string `json:"rights_level"`
	EmploymentStatusID int64  `json:"employment_status_id"`
	EmploymentStatus   string `json:"employment_status"`
}

// LoginResult is returned by both login flows.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// VerificationStatus answers whether a client's passport is verified.
type VerificationStatus struct {
	IsVerified bool `json:"is_verified"`
}

// BanStatus answers whether a client is banned.
type BanStatus struct {
	IsBanned bool `json:"is_banned"`
}
