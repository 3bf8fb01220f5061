package wizard

import "fmt"

// Mode selects between creating an account and signing into an existing one
type Mode string

const (
	ModeSignUp Mode = "signup"
	ModeSignIn Mode = "signin"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeSignUp || m == ModeSignIn
}

// Role is the kind of account being created
type Role string

const (
	RoleUnselected Role = ""
	RoleRenter     Role = "renter"
	RoleOwner      Role = "owner"
)

// Valid reports whether r is a selectable role
func (r Role) Valid() bool {
	return r == RoleRenter || r == RoleOwner
}

// Step is a position in the wizard. Renters only ever reach StepAccount.
type Step int

const (
	StepRoleSelect Step = iota
	StepAccount
	StepBasics
	StepLocation
	StepPhotos
	StepDescription
	StepKosherAmenities
	StepPreview
)

var stepNames = map[Step]string{
	StepRoleSelect:      "role_select",
	StepAccount:         "account",
	StepBasics:          "basics",
	StepLocation:        "location",
	StepPhotos:          "photos",
	StepDescription:     "description",
	StepKosherAmenities: "kosher_amenities",
	StepPreview:         "preview",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// LastStep is the terminal step for a role, the one Complete is issued from
func LastStep(role Role) Step {
	switch role {
	case RoleOwner:
		return StepPreview
	case RoleRenter:
		return StepAccount
	default:
		return StepRoleSelect
	}
}
