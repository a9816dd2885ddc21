package models

// RoleType defines the role carried in an access token
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleAdmin   RoleType = "ADMIN"
)

// Department is one of the fixed academic departments.
type Department string

const (
	DeptCSE        Department = "CSE"
	DeptECE        Department = "ECE"
	DeptCivil      Department = "Civil"
	DeptEEE        Department = "EEE"
	DeptMechanical Department = "Mechanical"
	DeptIT         Department = "IT"
	DeptChemical   Department = "Chemical"
	DeptBiotech    Department = "Biotech"
)

// Departments lists every valid department in display order.
var Departments = []Department{
	DeptCSE, DeptECE, DeptCivil, DeptEEE, DeptMechanical, DeptIT, DeptChemical, DeptBiotech,
}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	for _, v := range Departments {
		if v == d {
			return true
		}
	}
	return false
}

// Year is the roman-numeral study year, I to IV.
type Year string

const (
	YearI   Year = "I"
	YearII  Year = "II"
	YearIII Year = "III"
	YearIV  Year = "IV"
)

// Number returns the year as 1..4, or 0 for an unknown value.
func (y Year) Number() int {
	switch y {
	case YearI:
		return 1
	case YearII:
		return 2
	case YearIII:
		return 3
	case YearIV:
		return 4
	}
	return 0
}

// Valid reports whether y is I, II, III or IV.
func (y Year) Valid() bool { return y.Number() != 0 }

// ValidSection reports whether s is a single section letter from A to S.
func ValidSection(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'S'
}
