package idcard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jucampus/registrar-api/internal/models"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Anita Rao", "Anita_Rao"},
		{"specials", "R@hul / Shetty!", "R_hul_Shetty"},
		{"collapses runs", "A   B", "A_B"},
		{"keeps hyphen", "Mary-Jane", "Mary-Jane"},
		{"empty", "", "Unknown_Student"},
		{"only specials", "@@@", "Unknown_Student"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeName(tc.in))
		})
	}

	long := SanitizeName("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdef")
	assert.LessOrEqual(t, len(long), 50)
}

func TestAddressBlock(t *testing.T) {
	s := &models.Student{
		Address: "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	}
	assert.Equal(t, "12 MG Road\nBengaluru\nKarnataka - 560001", s.AddressBlock())

	partial := &models.Student{City: "Bengaluru", State: "Karnataka"}
	assert.Equal(t, "Bengaluru\nKarnataka", partial.AddressBlock())

	empty := &models.Student{}
	assert.Equal(t, "", empty.AddressBlock())
}

func TestExpiryDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-12-31", ExpiryDate(2021, now))
	assert.Equal(t, "2026-12-31", ExpiryDate(0, now))
}

func TestBuildTokenMap(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		StudentID:     "STU1A2B3C4D",
		Name:          "Anita Rao",
		Email:         "anita@example.com",
		Department:    "computer_science",
		AdmissionYear: 2021,
		Address:       "12 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		Pincode:       "560001",
		DateOfBirth:   "2003-02-14",
		RegisteredAt:  time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		Parents:       models.ParentInfo{FatherName: "Suresh Rao"},
	}

	tokens := BuildTokenMap(student, now)

	assert.Equal(t, "Anita Rao", tokens["{{NAME}}"])
	assert.Equal(t, "2025-12-31", tokens["{{EXPIRY_DATE}}"])
	assert.Equal(t, "2024-06-01", tokens["{{ISSUE_DATE}}"])
	assert.Equal(t, "2024-05-20", tokens["{{REGISTRATION_DATE}}"])
	assert.Equal(t, "12 MG Road\nBengaluru\nKarnataka - 560001", tokens["{{ADDRESS}}"])
	assert.Equal(t, tokens["{{DOB}}"], tokens["{{DATE_OF_BIRTH}}"])
	assert.Equal(t, "STU1A2B3C4D", tokens["{{BARCODE}}"])
	assert.Equal(t, "Suresh Rao", tokens["{{FATHER_NAME}}"])
}
