package prompt

import tea "github.com/charmbracelet/bubbletea"

// NewModelForTest exposes the input model.
func NewModelForTest(message string) tea.Model {
	return newModel(message)
}

// AnswerForTest reports the state of a model returned
// by Update.
func AnswerForTest(m tea.Model) (value string, done, cancelled bool) {
	mm := m.(model)

	return mm.input.Value(), mm.done, mm.cancelled
}
