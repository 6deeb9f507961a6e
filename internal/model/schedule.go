package model

type WorkShift struct {
	Base
	Name        string `json:"name"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type WorkShiftRequest struct {
	Name        string `json:"name" validate:"required"`
	StartTime   string `json:"startTime" validate:"required,clock"`
	EndTime     string `json:"endTime" validate:"required,clock"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// WorkSchedule assigns one shift to one practitioner on one weekday
// (0 is Sunday).
type WorkSchedule struct {
	Base
	MedicalStaffID string `json:"medicalStaffId"`
	WorkShiftID    string `json:"workShiftId"`
	DayOfWeek      int    `json:"dayOfWeek"`
	IsActive       bool   `json:"isActive"`
}

type WorkScheduleRequest struct {
	MedicalStaffID string `json:"medicalStaffId" validate:"required"`
	WorkShiftID    string `json:"workShiftId" validate:"required"`
	DayOfWeek      *int   `json:"dayOfWeek" validate:"required,gte=0,lte=6"`
	IsActive       *bool  `json:"isActive"`
}
