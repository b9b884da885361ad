package format

import (
	"strings"

	"taskdesk/app/pkg/types"
)

const defaultShortenLength = 200

// ShortenMessage trims long text for small screens, preferring to cut
// at a sentence boundary. maxLength <= 0 uses the default.
func ShortenMessage(message string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = defaultShortenLength
	}
	runes := []rune(message)
	if len(runes) <= maxLength {
		return message
	}

	var b strings.Builder
	for _, sentence := range strings.FieldsFunc(message, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if len([]rune(b.String()))+len([]rune(sentence)) > maxLength-3 {
			break
		}
		b.WriteString(sentence)
		b.WriteString(".")
	}
	if b.Len() > 0 {
		return b.String() + ".."
	}
	return string(runes[:maxLength-3]) + "..."
}

// ChunkButtons lays buttons out in rows of at most perRow, two by
// default.
func ChunkButtons(buttons []types.Button, perRow int) [][]types.Button {
	if perRow <= 0 {
		perRow = 2
	}
	var rows [][]types.Button
	for len(buttons) > perRow {
		rows = append(rows, buttons[:perRow])
		buttons = buttons[perRow:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}
