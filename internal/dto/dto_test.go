package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

func TestDashboardFlattensSection(t *testing.T) {
	d := Dashboard{
		DashboardBase: DashboardBase{Role: models.RoleLecturer, ReportsTotal: 3, Announcements: []models.Announcement{}},
		Section: LecturerSection{
			Reports: []models.ReportView{},
			Classes: []models.ClassView{},
			Stats:   LecturerStats{AvgAttendance: 80, UpcomingClasses: []models.ClassView{}},
		},
	}

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "lecturer", body["role"])
	assert.Equal(t, float64(3), body["reportsTotal"])
	assert.Nil(t, body["latestReport"])
	assert.Equal(t, []interface{}{}, body["reports"])
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(80), stats["avgAttendance"])
}

func TestAdminDashboardHasBaseOnly(t *testing.T) {
	raw, err := json.Marshal(Dashboard{DashboardBase: DashboardBase{Role: models.RoleAdmin, Announcements: []models.Announcement{}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"admin","reportsTotal":0,"latestReport":null,"announcements":[],"classesThisWeek":0}`, string(raw))
}

func TestWithMessage(t *testing.T) {
	raw, err := json.Marshal(WithMessage(models.FacultyOption{ID: 2, Code: "FICT", Name: "ICT"}, "Faculty created successfully"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"code":"FICT","name":"ICT","message":"Faculty created successfully"}`, string(raw))
}
