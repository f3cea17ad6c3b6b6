package enums

import "fmt"

// CreatorType identifies which actor table a policy's creator lives in.
type CreatorType string

const (
	CreatorTypeEmployee CreatorType = "employee"
	CreatorTypeAgent    CreatorType = "agent"
)

var validCreatorTypes = []CreatorType{
	CreatorTypeEmployee,
	CreatorTypeAgent,
}

// String implements fmt.Stringer.
func (c CreatorType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CreatorType.
func (c CreatorType) IsValid() bool {
	for _, candidate := range validCreatorTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCreatorType converts raw input into a CreatorType.
func ParseCreatorType(value string) (CreatorType, error) {
	for _, candidate := range validCreatorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid creator type %q", value)
}
