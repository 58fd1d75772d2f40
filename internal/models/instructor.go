package models

// InstructorProfile is the singleton profile of the school's instructor.
type InstructorProfile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	NationalID    string `json:"national_id"`
	Specialty     string `json:"specialty"`
	Experience    string `json:"experience"`
	Certification string `json:"certification"`
	Photo         string `json:"photo,omitempty"`
	JoinDate      string `json:"join_date"`
}

// DefaultInstructorProfile returns the profile created on first read.
func DefaultInstructorProfile(name string) InstructorProfile {
	if name == "" {
		name = "Bruno Oliveira"
	}
	return InstructorProfile{
		Name:          name,
		Email:         "bruno.oliveira@skateflow.com",
		Phone:         "(11) 99999-9999",
		NationalID:    "123.456.789-00",
		Specialty:     "Street & Ramp",
		Experience:    "8 years",
		Certification: "CBSK - Level 3 Instructor",
		JoinDate:      "2017-03-15",
	}
}
