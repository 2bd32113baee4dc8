package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelPart      = "part"

	LabelAddress = "address"
	LabelClient  = "client"
)
