// Package dialog holds per-user conversational state and the step
// machines that advance it. Transitions are pure: they consume the
// current state plus one input and produce the next state and an
// outcome; all external writes happen in the caller on Commit.
package dialog

type Action string

const (
	ActionCreatingTask      Action = "creating_task"
	ActionCreatingWorkspace Action = "creating_workspace"
	ActionJoiningWorkspace  Action = "joining_workspace"
	ActionCreatingTemplate  Action = "creating_template"
	ActionCreatingChecklist Action = "creating_checklist"
	ActionReportingIssue    Action = "reporting_issue"
	ActionOnboarding        Action = "onboarding"
	ActionEditingName       Action = "editing_name"
)

// State is one user's in-progress dialog. A user has at most one;
// starting a new dialog overwrites the previous one.
type State struct {
	Action Action
	Step   string
	Cursor int               // onboarding position, 1..4
	Data   map[string]string // partially collected fields
}

func newState(action Action, step string) State {
	return State{Action: action, Step: step, Data: map[string]string{}}
}

func (s State) with(step string, key, value string) State {
	next := State{Action: s.Action, Step: step, Cursor: s.Cursor, Data: map[string]string{}}
	for k, v := range s.Data {
		next.Data[k] = v
	}
	if key != "" {
		next.Data[key] = value
	}
	return next
}

type Outcome int

const (
	// OutcomePrompt advanced one step; send Prompt and store Next.
	OutcomePrompt Outcome = iota
	// OutcomeReprompt rejected the input; the step does not change.
	OutcomeReprompt
	// OutcomeCommit collected every field; the caller performs the
	// external write and clears the state.
	OutcomeCommit
	// OutcomePass means the input does not belong to this dialog and
	// falls through to generic command handling.
	OutcomePass
)

// KeyboardHint tells the caller which reply markup to attach; the
// dialog package stays free of presentation concerns.
type KeyboardHint int

const (
	KeyboardNone KeyboardHint = iota
	KeyboardForceReply
	KeyboardDeadlineQuick
)

type Result struct {
	Outcome  Outcome
	Next     State
	Prompt   string
	Keyboard KeyboardHint
}

func prompt(next State, text string, kb KeyboardHint) Result {
	return Result{Outcome: OutcomePrompt, Next: next, Prompt: text, Keyboard: kb}
}

func reprompt(st State, text string, kb KeyboardHint) Result {
	return Result{Outcome: OutcomeReprompt, Next: st, Prompt: text, Keyboard: kb}
}

func commit(next State) Result {
	return Result{Outcome: OutcomeCommit, Next: next}
}

func pass(st State) Result {
	return Result{Outcome: OutcomePass, Next: st}
}
