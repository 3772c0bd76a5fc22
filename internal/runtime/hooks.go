package runtime

import "github.com/aretw0/cback/pkg/domain"

// HookMap indexes hooks of one timing by action name.
type HookMap map[string][]domain.Hook

// For returns the hooks for action, or an empty slice.
func (m HookMap) For(action string) []domain.Hook {
	hooks := m[action]
	if hooks == nil {
		return []domain.Hook{}
	}
	return hooks
}

// BuildHookMaps partitions hook declarations by timing, grouped by action.
// Declaration order is kept within each group.
func BuildHookMaps(hooks []domain.Hook) (pre HookMap, post HookMap) {
	pre = make(HookMap)
	post = make(HookMap)
	for _, h := range hooks {
		switch h.Timing {
		case domain.TimingBefore:
			pre[h.Action] = append(pre[h.Action], h)
		case domain.TimingAfter:
			post[h.Action] = append(post[h.Action], h)
		}
	}
	return pre, post
}
