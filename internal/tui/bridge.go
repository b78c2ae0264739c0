package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yukikurage/isp-kanban/internal/board"
)

// confirmRequestMsg asks the user a yes/no question on behalf of the board.
// The model writes exactly one answer.
type confirmRequestMsg struct {
	prompt string
	answer chan<- bool
}

// noticeMsg carries a board notice into the program
type noticeMsg struct {
	notice board.Notice
}

// Bridge connects the board's blocking collaborators to a running program.
// It is a board.Confirmer and a board.Notifier. Before Attach, and after
// Detach, confirmations are declined and notices are dropped.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
	done chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{done: make(chan struct{})}
}

// Attach routes prompts and notices to p
func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

// Detach releases any Confirm still waiting once the program has exited
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.send == nil {
		return
	}
	b.send = nil
	close(b.done)
}

func (b *Bridge) sender() func(tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.send
}

// Confirm blocks until the user answers the prompt
func (b *Bridge) Confirm(prompt string) bool {
	send := b.sender()
	if send == nil {
		return false
	}

	answer := make(chan bool, 1)
	send(confirmRequestMsg{prompt: prompt, answer: answer})
	select {
	case yes := <-answer:
		return yes
	case <-b.done:
		return false
	}
}

func (b *Bridge) Notify(n board.Notice) {
	if send := b.sender(); send != nil {
		send(noticeMsg{notice: n})
	}
}
