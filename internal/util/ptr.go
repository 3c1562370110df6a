package util

// OptionalString returns nil for blank values.
func OptionalString(v string) *string {
	v = NormalizeSpaces(v)
	if v == "" {
		return nil
	}
	return &v
}

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
