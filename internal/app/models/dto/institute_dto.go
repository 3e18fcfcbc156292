package dto

// CreateInstituteRequest represents the payload of a new institute
type CreateInstituteRequest struct {
	Name string `json:"name" binding:"required,not_blank"`
}

// CreateGroupRequest represents the payload of a new group
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,not_blank"`
	Course      int    `json:"course" binding:"required,gt=0"`
	InstituteID int64  `json:"instituteId" binding:"required,gt=0"`
}
