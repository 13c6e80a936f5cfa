package model

type UserRole string

const (
	Mentee UserRole = "mentee"
	Mentor UserRole = "mentor"
)

// swagger:model User
type User struct {
	BaseModel
	LoginID  string   `gorm:"size:64;uniqueIndex;not null" json:"loginId"`
	Username string   `gorm:"size:100;not null" json:"username"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('mentee','mentor');default:'mentee'" json:"role"`
	MentorID *uint    `gorm:"index" json:"mentorId,omitempty"`
	Mentor   *User    `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
}

func (User) TableName() string {
	return "users"
}
