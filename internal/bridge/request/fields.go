package request

// Args is an untyped argument map as decoded from the boundary.
type Args map[string]any

// optString returns the value at key when it is a string. Any other type,
// including absence, yields nil.
func (a Args) optString(key string) *string {
	v, ok := a[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func (a Args) optBool(key string) *bool {
	v, ok := a[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// optMap returns a nested argument map. Decoders differ on the concrete map
// type, so both forms are accepted.
func (a Args) optMap(key string) Args {
	switch v := a[key].(type) {
	case map[string]any:
		return Args(v)
	case Args:
		return v
	}
	return nil
}

// requiredString returns a non-empty string at key.
func (a Args) requiredString(key string) (string, bool) {
	v := a.optString(key)
	if v == nil || *v == "" {
		return "", false
	}
	return *v, true
}
