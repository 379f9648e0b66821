package models

// ServerTimestamp is sent for timestamp columns so the database fills them in.
const ServerTimestamp = "now()"

// ProfilesTable is the REST table that holds one profile per auth user.
const ProfilesTable = "profiles"

type UserMetadata struct {
	FullName string `json:"full_name"`
}

type NewUserRequest struct {
	Email        string       `json:"email" validate:"required,email"`
	Password     string       `json:"password" validate:"required,min=6"`
	EmailConfirm bool         `json:"email_confirm"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

type TasteTag struct {
	Name string `json:"name" validate:"required"`
}

type Profile struct {
	ID           string     `json:"id" validate:"required,uuid"`
	FullName     string     `json:"full_name"`
	Location     string     `json:"location"`
	TasteProfile []TasteTag `json:"taste_profile" validate:"dive"`
	CreatedAt    string     `json:"created_at"`
	UpdatedAt    string     `json:"updated_at"`
}

type TestUserParams struct {
	Email    string
	Password string
	FullName string
	Location string
	Tags     []string
}

type TestAccount struct {
	UserID         string
	Email          string
	Password       string
	EmailVerified  bool
	ProfileCreated bool
	ProfileError   string
}

type StatementOutcome int

const (
	StatementExecuted StatementOutcome = iota
	StatementTolerated
	StatementFailed
)

func (o StatementOutcome) String() string {
	switch o {
	case StatementExecuted:
		return "executed"
	case StatementTolerated:
		return "tolerated"
	case StatementFailed:
		return "failed"
	}

	return "unknown"
}

type StatementResult struct {
	Index   int
	Outcome StatementOutcome
	Err     error
}

type SchemaSummary struct {
	Total int
	// Executed includes tolerated statements.
	Executed  int
	Tolerated int
	Failed    int
	Results   []StatementResult
}

// Succeeded reports whether no statement failed for a non-tolerated reason.
func (s SchemaSummary) Succeeded() bool {
	return s.Failed == 0
}
