package observability

import "github.com/aretw0/questionnaire/pkg/domain"

// Combine fans lifecycle events out to every given observer, in order.
func Combine(hooks ...domain.Hooks) domain.Hooks {
	return domain.Hooks{
		OnCommand: func(ev domain.CommandEvent) {
			for _, h := range hooks {
				h.Command(ev)
			}
		},
		OnTransition: func(ev domain.TransitionEvent) {
			for _, h := range hooks {
				h.Transition(ev)
			}
		},
	}
}
