package semantic

// Flow-control error codes (the E06xx range)
const (
	CodeUndefinedLabel    = "E0601"
	CodeDuplicateLabel    = "E0602"
	CodeGotoOutsideSwitch = "E0603"
	CodeUndefinedCase     = "E0604"
	CodeDuplicateDefault  = "E0605"
)
