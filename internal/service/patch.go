package service

// apply copies *v into dst when v is supplied and differs, returning 1 for a change.
func apply(dst *string, v *string) int {
	if v == nil || *dst == *v {
		return 0
	}
	*dst = *v
	return 1
}

// applyAs is apply for string-backed enum fields.
func applyAs[T ~string](dst *T, v *string) int {
	if v == nil || string(*dst) == *v {
		return 0
	}
	*dst = T(*v)
	return 1
}
