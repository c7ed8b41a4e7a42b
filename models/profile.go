package models

import "slices"

// StartupStages lists the accepted values of Profile.StartupStage.
var StartupStages = []string{"idea", "mvp", "early_traction", "growth", "scaling"}

func ValidStage(s string) bool {
	return s == "" || slices.Contains(StartupStages, s)
}

type Profile struct {
	UserID       string `gorm:"primaryKey;size:36" json:"user_id"`
	DisplayName  string `gorm:"size:120" json:"display_name"`
	CompanyName  string `gorm:"size:120" json:"company_name"`
	StartupStage string `gorm:"size:20" json:"startup_stage"`
	Industry     string `gorm:"size:120" json:"industry"`
	Goals        string `gorm:"type:text" json:"goals"`
	Bio          string `gorm:"type:text" json:"bio"`
}
