package cache

import "strings"

var keySerializer = NewDefaultKeySerializer()

// QueryKey identifies a cached query result. Two keys are equal when their
// scope and parameters are equal, so QueryKey can be compared with == and
// used as a map key. The zero value is not a valid key.
type QueryKey struct {
	scope string
	id    string
}

// NewQueryKey builds a key for the query named by scope with the given parameters.
func NewQueryKey(scope string, params ...any) QueryKey {
	return QueryKey{scope: scope, id: keySerializer.SerializeKey(scope, params...)}
}

// ParseQueryKey rebuilds a key from its String form.
func ParseQueryKey(s string) QueryKey {
	scope, _, _ := strings.Cut(s, KeySeparator)
	return QueryKey{scope: scope, id: s}
}

// Scope returns the query name the key was built for.
func (k QueryKey) Scope() string { return k.scope }

// String returns the serialized key, suitable for backends keyed by string.
func (k QueryKey) String() string { return k.id }

// IsZero reports whether k was never built.
func (k QueryKey) IsZero() bool { return k.id == "" }

// KeyPredicate selects keys for PatchAll and Subscribe.
type KeyPredicate func(QueryKey) bool

// AllKeys matches every key.
func AllKeys(QueryKey) bool { return true }

// InScope matches every key built for scope, whatever its parameters.
func InScope(scope string) KeyPredicate {
	return func(k QueryKey) bool { return k.scope == scope }
}

// AnyOf matches exactly the given keys.
func AnyOf(keys ...QueryKey) KeyPredicate {
	return func(k QueryKey) bool {
		for _, candidate := range keys {
			if candidate == k {
				return true
			}
		}
		return false
	}
}
