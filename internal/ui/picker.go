package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
)

// picker is a search line over a list of candidates. Arrow keys move the
// selection; everything else edits the query.
type picker struct {
	title string
	input textinput.Model
	list  list.Model
}

func newPicker(title, placeholder string, w, h int) *picker {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 100
	in.Focus()

	p := &picker{title: title, input: in}
	p.list = newList(nil, title, w, h-3)
	p.list.SetShowTitle(false)
	return p
}

func (p *picker) SetSize(w, h int) {
	p.input.Width = max(w-4, 10)
	p.list.SetSize(w, max(h-3, 3))
}

func (p *picker) SetItems(items []list.Item) {
	p.list.SetItems(items)
	p.list.ResetSelected()
}

func (p *picker) Query() string { return p.input.Value() }

func (p *picker) Selected() (entry, bool) {
	it, ok := p.list.SelectedItem().(entry)
	return it, ok
}

// Update returns changed when the query was edited.
func (p *picker) Update(msg tea.Msg) (changed bool, cmd tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "up", "down", "pgup", "pgdown":
			p.list, cmd = p.list.Update(msg)
			return false, cmd
		}
	}
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	return p.input.Value() != before, cmd
}

func (p *picker) View() string {
	return titleStyle.Render(p.title) + "\n" + p.input.View() + "\n" + p.list.View()
}
