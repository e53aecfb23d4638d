package domain

// CommandEvent describes a command applied (or rejected) by the configuration engine.
type CommandEvent struct {
	Command    string `json:"command"`
	QuestionID string `json:"question_id,omitempty"`
	Rejected   bool   `json:"rejected,omitempty"`
	Ignored    bool   `json:"ignored,omitempty"` // unknown target id, nothing changed
	Err        error  `json:"-"`
	Count      int    `json:"count"` // list length after the command
}

// TransitionEvent describes a state change of the flow engine.
type TransitionEvent struct {
	From  Status `json:"from"`
	To    Status `json:"to"`
	Event Event  `json:"event"`
	Index int    `json:"index"`
}

// Hooks are synchronous observers of engine activity.
// They run after the transition has been applied and cannot alter it.
type Hooks struct {
	OnCommand    func(CommandEvent)
	OnTransition func(TransitionEvent)
}

// Command notifies OnCommand if set.
func (h Hooks) Command(ev CommandEvent) {
	if h.OnCommand != nil {
		h.OnCommand(ev)
	}
}

// Transition notifies OnTransition if set.
func (h Hooks) Transition(ev TransitionEvent) {
	if h.OnTransition != nil {
		h.OnTransition(ev)
	}
}
