package tree

// DeepCopy returns a copy of v that shares no containers with it.
// Scalars are returned as-is.
func DeepCopy(v any) any {
	switch val := v.(type) {
	case Map:
		return DeepCopyMap(val)
	case []any:
		return DeepCopySlice(val)
	default:
		return v
	}
}

// DeepCopyMap performs a deep copy of a Map.
func DeepCopyMap(src Map) Map {
	if src == nil {
		return nil
	}

	dst := NewMap(len(src))

	for _, e := range src {
		dst = append(dst, Entry{Key: e.Key, Value: DeepCopy(e.Value)})
	}

	return dst
}

// DeepCopySlice performs a deep copy of a sequence.
func DeepCopySlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))

	for i, v := range src {
		dst[i] = DeepCopy(v)
	}

	return dst
}
