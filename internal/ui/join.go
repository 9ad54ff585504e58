package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/campus_connect/internal/app"
	"github.com/notepid/campus_connect/internal/group"
)

// joinResultMsg reports a finished join call.
type joinResultMsg struct {
	group  *group.Group
	result group.JoinResult
	err    error
}

func joinCmd(ctx context.Context, a *app.App, g *group.Group, note string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.Groups.Join(ctx, g.ID, note)
		return joinResultMsg{group: g, result: res, err: err}
	}
}

// joinOutcome turns a join result into the follow-up notification.
func joinOutcome(msg joinResultMsg) tea.Cmd {
	if msg.err != nil {
		return failure("join group", msg.err)
	}
	if notice := msg.result.Notice(msg.group.RequiresInvite); notice != "" {
		return alertCmd(notice)
	}
	return nil
}

// joinDialog confirms a join that needs approval and collects an optional
// note for the group admin. Direct joins skip it.
type joinDialog struct {
	group *group.Group
	form  *huh.Form

	note    string
	confirm bool
}

func newJoinDialog(g *group.Group, aff group.Affordance) *joinDialog {
	d := &joinDialog{group: g, confirm: true}
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(g.Name).Description(aff.Confirm),
			huh.NewText().Title("Message to the group admin (optional)").Value(&d.note).CharLimit(500),
			huh.NewConfirm().Title("Send join request?").Value(&d.confirm),
		),
	)
	return d
}

// startJoin begins the join flow for g: a dialog when the affordance asks for
// confirmation, otherwise the call itself.
func startJoin(ctx context.Context, a *app.App, g *group.Group) (*joinDialog, tea.Cmd) {
	aff := group.AffordanceFor(g, a.Session.UserID())
	switch aff.Action {
	case group.ActionJoin:
		return nil, joinCmd(ctx, a, g, "")
	case group.ActionRequest:
		d := newJoinDialog(g, aff)
		return d, d.form.Init()
	default:
		return nil, nil
	}
}

// Update returns done once the dialog is finished and send when the request
// should go out.
func (d *joinDialog) Update(msg tea.Msg) (done, send bool, cmd tea.Cmd, err error) {
	if isKey(msg, "esc") {
		return true, false, nil, nil
	}
	d.form, cmd, err = updateForm(d.form, msg)
	if err != nil {
		return true, false, nil, err
	}
	switch d.form.State {
	case huh.StateCompleted:
		return true, d.confirm, nil, nil
	case huh.StateAborted:
		return true, false, nil, nil
	}
	return false, false, cmd, nil
}

func (d *joinDialog) View() string {
	return d.form.View() + "\n\n(esc to cancel)"
}
