package keymap

// Resolver maps key strings to actions, scoped by context.
type Resolver struct {
	bindings map[string][]Binding // key -> bindings using it
	byAction map[Action][]string  // action -> keys (for help/documentation)
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string][]Binding),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = append(r.bindings[key], b)
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action bound to key in the first matching context,
// or "" if none. Without contexts every binding matches.
func (r *Resolver) Resolve(key string, contexts ...string) Action {
	candidates := r.bindings[key]
	if len(contexts) == 0 {
		if len(candidates) == 0 {
			return ""
		}
		return candidates[0].Action
	}
	for _, ctx := range contexts {
		for _, b := range candidates {
			if b.Context == ctx {
				return b.Action
			}
		}
	}
	return ""
}

// KeysFor returns the keys bound to an action (for help/documentation).
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// dedupe removes duplicate strings from a slice.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
