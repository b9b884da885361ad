package dialog

import (
	"regexp"
	"strings"
)

const (
	StepType  = "type"
	StepItems = "items"
)

const (
	PromptChecklistName = "Название чек-листа?"

	promptChecklistType    = "Тип чек-листа? (opening/closing/daily)"
	promptChecklistBadType = "Тип должен быть opening, closing или daily."
	promptChecklistItems   = "Вставьте задачи, по одной на строку. Используйте слова \"photo\"/\"сфотографировать\" для задач с фото."
	promptChecklistEmpty   = "Нужна хотя бы одна задача. Вставьте задачи, по одной на строку:"
)

var checklistTypes = map[string]bool{
	"opening": true,
	"closing": true,
	"daily":   true,
}

// ChecklistItem is one template line with its derived reward weight.
type ChecklistItem struct {
	Title         string
	XPReward      int
	RequiresPhoto bool
}

var (
	complexItemRe = regexp.MustCompile(`complex|cash|касс`)
	tableItemRe   = regexp.MustCompile(`table|arrange|сервир|стол`)
)

func NewChecklistState() State {
	return newState(ActionCreatingChecklist, StepName)
}

// AdvanceChecklist walks name → type → items. The items text is kept
// raw in the state; the caller parses it with ParseChecklistItems and
// commits the whole set as one template.
func AdvanceChecklist(st State, text string) Result {
	if st.Action != ActionCreatingChecklist {
		return pass(st)
	}

	switch st.Step {
	case StepName:
		return prompt(st.with(StepType, "name", strings.TrimSpace(text)), promptChecklistType, KeyboardForceReply)
	case StepType:
		typ := strings.ToLower(strings.TrimSpace(text))
		if !checklistTypes[typ] {
			return reprompt(st, promptChecklistBadType, KeyboardForceReply)
		}
		return prompt(st.with(StepItems, "type", typ), promptChecklistItems, KeyboardForceReply)
	case StepItems:
		if len(ParseChecklistItems(text)) == 0 {
			return reprompt(st, promptChecklistEmpty, KeyboardForceReply)
		}
		return commit(st.with(StepDone, "items_raw", text))
	default:
		return pass(st)
	}
}

// ParseChecklistItems splits the pasted text into one item per
// non-empty line and derives reward weight and the photo flag from
// keyword heuristics: cash-desk work counts as complex (50), table
// serving as medium (25), everything else 10; a photo requirement adds
// another 25.
func ParseChecklistItems(text string) []ChecklistItem {
	var items []ChecklistItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lc := strings.ToLower(line)
		requiresPhoto := strings.Contains(lc, "photo") || strings.Contains(lc, "сфот")

		xp := 10
		if complexItemRe.MatchString(lc) {
			xp = 50
		} else if tableItemRe.MatchString(lc) {
			xp = 25
		}
		if requiresPhoto {
			xp += 25
		}

		items = append(items, ChecklistItem{Title: line, XPReward: xp, RequiresPhoto: requiresPhoto})
	}
	return items
}
