package domain

// SubjectType differentiates citizen, department and admin tokens.
type SubjectType string

const (
	SubjectTypeCitizen    SubjectType = "CITIZEN"
	SubjectTypeDepartment SubjectType = "DEPARTMENT"
	SubjectTypeAdmin      SubjectType = "ADMIN"
)
