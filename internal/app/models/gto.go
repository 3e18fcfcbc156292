package models

import "time"

// Level is a GTO achievement level
type Level string

const (
	LevelGold   Level = "gold"
	LevelSilver Level = "silver"
	LevelBronze Level = "bronze"
)

// Levels lists the achievement levels in report order
var Levels = []Level{LevelGold, LevelSilver, LevelBronze}

// Valid reports whether l is one of the three known levels
func (l Level) Valid() bool {
	switch l {
	case LevelGold, LevelSilver, LevelBronze:
		return true
	}
	return false
}

// Achievement is a student's GTO level for a given year. At most one per (student, year).
type Achievement struct {
	StudentID int64     `json:"studentId" db:"student_id"`
	Year      int       `json:"year" db:"year"`
	Level     Level     `json:"level" db:"level"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Tally counts achievement levels within a scope
type Tally struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// Add counts one record of the given level. Unknown levels are ignored.
func (t Tally) Add(level Level) Tally {
	switch level {
	case LevelGold:
		t.Gold++
	case LevelSilver:
		t.Silver++
	case LevelBronze:
		t.Bronze++
	}
	return t
}

// Get returns the count for one level
func (t Tally) Get(level Level) int {
	switch level {
	case LevelGold:
		return t.Gold
	case LevelSilver:
		return t.Silver
	case LevelBronze:
		return t.Bronze
	}
	return 0
}

// Total is the sum of all three levels
func (t Tally) Total() int {
	return t.Gold + t.Silver + t.Bronze
}

// Rank holds an institute's 1-based position per level
type Rank struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// Percentages holds per-level shares in percent
type Percentages struct {
	Gold   float64 `json:"gold"`
	Silver float64 `json:"silver"`
	Bronze float64 `json:"bronze"`
}

// InstituteTally is one row of the cross-institute standings
type InstituteTally struct {
	InstituteID int64 `json:"instituteId"`
	Tally       Tally `json:"tally"`
}

// InstituteReport is the assembled GTO report for one institute
type InstituteReport struct {
	InstituteID      int64       `json:"instituteId"`
	Year             int         `json:"year"`
	CountByInstitute Tally       `json:"count_by_institute"`
	MembersCount     Tally       `json:"members_count"`
	Rating           Rank        `json:"rating"`
	PercentByCommon  Percentages `json:"percent_by_common"`
}

// Achievement event types
const (
	AchievementRecorded = "achievement.recorded"
	AchievementUpdated  = "achievement.updated"
	AchievementDeleted  = "achievement.deleted"
)

// AchievementEvent describes a change of one student's GTO record
type AchievementEvent struct {
	Type        string    `json:"type"`
	InstituteID int64     `json:"instituteId"`
	GroupID     int64     `json:"groupId"`
	StudentID   int64     `json:"studentId"`
	Year        int       `json:"year"`
	Level       Level     `json:"level,omitempty"`
	At          time.Time `json:"at"`
}
