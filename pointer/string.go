package pointer

// ToString dereferences an optional wire field, defaulting to the empty
// string.
func ToString(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}
