package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sidequest/internal/profile"
	"github.com/five82/sidequest/internal/questsync"
	"github.com/five82/sidequest/internal/sidequest"
	"github.com/five82/sidequest/internal/state"
)

const (
	opReload  = "Reload"
	opRefresh = "Refresh"

	historyPageSize = 50
)

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	pending  map[string]bool
}

type boardLoadedMsg struct {
	op  string
	err error
}

type transitionMsg struct {
	id     string
	status sidequest.Status
	quest  sidequest.Quest
	err    error
}

type profileLoadedMsg struct{ err error }

type profileSavedMsg struct{ err error }

type historyMsg struct {
	page  sidequest.HistoryPage
	stats sidequest.HistoryStats
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(q *questsync.Coordinator) tea.Cmd {
	if q == nil {
		return nil
	}
	return func() tea.Msg {
		pending := map[string]bool{}
		for _, p := range q.Pending() {
			pending[p.QuestID] = true
		}
		return snapshotMsg{snapshot: q.Store().Snapshot(), pending: pending}
	}
}

func loadBoardCmd(ctx context.Context, q *questsync.Coordinator, op string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if op == opRefresh {
			err = q.RefreshBoard(ctx)
		} else {
			err = q.LoadBoard(ctx)
		}
		return boardLoadedMsg{op: op, err: err}
	}
}

func transitionCmd(ctx context.Context, q *questsync.Coordinator, id string, status sidequest.Status, feedback *sidequest.Feedback) tea.Cmd {
	return func() tea.Msg {
		quest, err := q.Transition(ctx, id, status, feedback)
		return transitionMsg{id: id, status: status, quest: quest, err: err}
	}
}

func loadProfileCmd(ctx context.Context, p *profile.Adapter) tea.Cmd {
	return func() tea.Msg {
		_, err := p.Load(ctx)
		return profileLoadedMsg{err: err}
	}
}

func blurProfileCmd(ctx context.Context, p *profile.Adapter) tea.Cmd {
	return func() tea.Msg {
		return profileSavedMsg{err: p.Blur(ctx)}
	}
}

func closeProfileCmd(ctx context.Context, p *profile.Adapter) tea.Cmd {
	return func() tea.Msg {
		// The program context may already be cancelled on quit.
		return profileSavedMsg{err: p.Close(context.WithoutCancel(ctx))}
	}
}

func loadHistoryCmd(ctx context.Context, q *questsync.Coordinator) tea.Cmd {
	return func() tea.Msg {
		page, err := q.History(ctx, sidequest.HistoryQuery{Limit: historyPageSize})
		if err != nil {
			return historyMsg{err: err}
		}
		stats, err := q.Stats(ctx)
		return historyMsg{page: page, stats: stats, err: err}
	}
}
