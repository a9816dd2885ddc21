package dto

import "github.com/yigit/achievement-portal/internal/app/models"

// RegisterRequest creates a student account
type RegisterRequest struct {
	RollNumber string            `json:"rollNumber" binding:"required,rollnumber"`
	Email      string            `json:"email" binding:"required,email"`
	Password   string            `json:"password" binding:"required,min=6,max=72"`
	Name       string            `json:"name" binding:"required,min=2,max=100"`
	Department models.Department `json:"department" binding:"required,department"`
	Section    string            `json:"section" binding:"required,section"`
	Year       models.Year       `json:"year" binding:"required,studyyear"`
}

// LoginRequest authenticates a student by email or roll number
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginRequest authenticates an administrator
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StudentAuthResponse is returned after student registration or login
type StudentAuthResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expiresIn"`
	Student   *models.Account `json:"student"`
}

// AdminAuthResponse is returned after admin login
type AdminAuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int           `json:"expiresIn"`
	Admin     *models.Admin `json:"admin"`
}

// UpdateProfileRequest edits the caller's account. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=2,max=100"`
	Department  *models.Department  `json:"department" binding:"omitempty,department"`
	Section     *string             `json:"section" binding:"omitempty,section"`
	Year        *models.Year        `json:"year" binding:"omitempty,studyyear"`
	SocialLinks *models.SocialLinks `json:"socialLinks"`
}

// ToModel converts the request into a profile update
func (r UpdateProfileRequest) ToModel() models.ProfileUpdate {
	return models.ProfileUpdate{
		Name:        r.Name,
		Department:  r.Department,
		Section:     r.Section,
		Year:        r.Year,
		SocialLinks: r.SocialLinks,
	}
}
