package dto

import "github.com/yigit/gtostat/internal/app/models"

// AchievementRequest records a student's GTO level for the current year
type AchievementRequest struct {
	StudentID int64        `json:"student_id" binding:"required,gt=0"`
	Level     models.Level `json:"level" binding:"required,gto_level" example:"gold"`
}

// TallyResponse is a level tally of one scope
type TallyResponse struct {
	Year  int          `json:"year" example:"2026"`
	Tally models.Tally `json:"tally"`
}
