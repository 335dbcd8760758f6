package store

// Get returns the value of key as T. ok is false when the key is unset or
// holds a value of another type.
func Get[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOr returns the value of key as T, or fallback.
func GetOr[T any](s *Store, key string, fallback T) T {
	if v, ok := Get[T](s, key); ok {
		return v
	}
	return fallback
}

// Watch subscribes fn to key. Values of another type are skipped.
func Watch[T any](s *Store, key string, fn func(T)) Subscription {
	return s.Subscribe(key, func(value any) {
		if t, ok := value.(T); ok {
			fn(t)
		}
	})
}
