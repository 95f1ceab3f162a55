package defs

// Common labels for logging and metrics
const (
	LabelComponent = "component"
	LabelName      = "name"
)

// TruncationMark is appended to a record payload when it overflowed its slot buffer
const TruncationMark = ">>"
