package domain

// CodePurpose distinguishes the two independent one-time code slots of an account.
type CodePurpose string

const (
	CodePurposeVerification  CodePurpose = "verification"
	CodePurposePasswordReset CodePurpose = "password_reset"
)
