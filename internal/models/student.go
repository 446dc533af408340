package models

// Student is a broadcast recipient with its contact data.
type Student struct {
	BaseModel

	FirstName string  `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string  `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     *string `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Phone     *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	IsActive  bool    `gorm:"default:true;index" json:"is_active"`
}

// FullName joins the first and last name.
func (s *Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}
