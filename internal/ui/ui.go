package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/rivo/tview"

	"github.com/bz888/accbuddy/internal/catalog"
	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
	"github.com/bz888/accbuddy/internal/maintenance"
)

const (
	inputPlaceholder = "Ask Accounting Buddy about an accounting task or topic..."
	promptModalPage  = "promptModal"
)

// Session is the conversation the UI renders and drives.
type Session interface {
	Snapshot() conversation.State
	Subscribe(fn func(conversation.State)) (unsubscribe func())
	Probe(ctx context.Context) conversation.ConnectionStatus
	Submit(ctx context.Context, text string) bool
	ApplyPromptSuggestion(text string)
}

type CredentialRefresher interface {
	Refresh(ctx context.Context) maintenance.Result
}

type Options struct {
	Dev        bool
	BackendURL string
	Catalog    *catalog.Catalog
	Refresher  CredentialRefresher
}

type UI struct {
	session    Session
	refresher  CredentialRefresher
	catalog    *catalog.Catalog
	backendURL string
	log        *logger.Logger

	app          *tview.Application
	pages        *tview.Pages
	mainFlex     *tview.Flex
	banner       *tview.TextView
	transcript   *tview.TextView
	input        *tview.TextArea
	debugConsole *tview.TextView
	debugVisible bool
	lastStaged   string

	ctx   context.Context
	dirty chan struct{}

	mu     sync.Mutex
	notice string
}

func New(session Session, opts Options) *UI {
	u := &UI{
		session:      session,
		refresher:    opts.Refresher,
		catalog:      opts.Catalog,
		backendURL:   opts.BackendURL,
		log:          logger.NewLogger("views"),
		app:          tview.NewApplication(),
		debugVisible: opts.Dev,
		ctx:          context.Background(),
		dirty:        make(chan struct{}, 1),
	}
	if u.catalog == nil {
		u.catalog = catalog.Default()
	}
	u.app.EnablePaste(true)
	u.app.EnableMouse(true)

	u.debugConsole = u.initDebugConsole()
	u.banner = tview.NewTextView().SetDynamicColors(true)
	u.transcript = u.initChatViewer()
	u.input = u.initChatInput()

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(u.banner, 1, 0, false).
		AddItem(u.transcript, 0, 1, false).
		AddItem(u.input, 8, 2, true)
	u.mainFlex = tview.NewFlex().
		AddItem(subFlex, 0, 2, true)
	if u.debugVisible {
		u.mainFlex.AddItem(u.debugConsole, 0, 1, false)
	}
	u.pages = tview.NewPages().AddPage("main", u.mainFlex, true, true)

	u.setInputCapture()
	return u
}

func (u *UI) initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversation").SetBorder(true)
	textView.SetScrollable(true)
	return textView
}

func (u *UI) initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea().SetPlaceholder(inputPlaceholder)
	textArea.SetTitle("Question").SetBorder(true)
	return textArea
}

func (u *UI) initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			u.app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// DebugConsole is the pane the logger writes to in dev mode.
func (u *UI) DebugConsole() *tview.TextView {
	return u.debugConsole
}

// Run shows the UI until the user quits or ctx is cancelled. The backend is probed
// in the background as soon as the UI starts.
func (u *UI) Run(ctx context.Context) error {
	u.ctx = ctx
	unsubscribe := u.session.Subscribe(func(conversation.State) {
		u.invalidate()
	})
	defer unsubscribe()

	u.draw(u.session.Snapshot())

	done := make(chan struct{})
	defer close(done)
	go u.renderLoop(done)
	go u.session.Probe(ctx)
	go func() {
		select {
		case <-ctx.Done():
			u.app.Stop()
		case <-done:
		}
	}()

	if err := u.app.SetRoot(u.pages, true).SetFocus(u.input).Run(); err != nil {
		return errors.Wrap(err, "ui stopped")
	}
	return nil
}

func (u *UI) Stop() {
	u.app.Stop()
}

// invalidate schedules a redraw. It never blocks, so it is safe from observers and
// from inside the event loop. Pending redraws are coalesced.
func (u *UI) invalidate() {
	select {
	case u.dirty <- struct{}{}:
	default:
	}
}

// renderLoop draws the latest snapshot whenever the UI was invalidated.
func (u *UI) renderLoop(done <-chan struct{}) {
	for {
		select {
		case <-u.dirty:
			u.app.QueueUpdateDraw(func() {
				u.draw(u.session.Snapshot())
			})
		case <-done:
			return
		}
	}
}

// draw must run on the event loop, or before it starts.
func (u *UI) draw(s conversation.State) {
	u.transcript.SetText(renderTranscript(s, u.catalog.Prompts, u.currentNotice()))
	u.transcript.ScrollToEnd()
	u.banner.SetText(bannerText(s.Connection, u.backendURL))

	u.input.SetDisabled(s.Connection == conversation.Error)
	if s.Staged != u.lastStaged {
		if s.Staged != "" {
			u.input.SetText(s.Staged, true)
		}
		u.lastStaged = s.Staged
	}
}

func (u *UI) currentNotice() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.notice
}

func (u *UI) setNotice(text string) {
	u.mu.Lock()
	u.notice = text
	u.mu.Unlock()
	u.invalidate()
}

func (u *UI) setInputCapture() {
	u.transcript.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			u.app.SetFocus(u.input)
		}
		return event
	})

	u.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			u.app.SetFocus(u.transcript)
			return nil
		case tcell.KeyEnter:
			if u.handleInput(u.input.GetText()) {
				u.input.SetText("", true)
			}
			return nil
		}
		return event
	})
}

// handleInput runs a command or submits a chat message. It reports whether the input
// was consumed and the input box should be cleared.
func (u *UI) handleInput(content string) bool {
	if cmd, ok := parseCommand(content); ok {
		u.runCommand(cmd)
		return true
	}
	if !conversation.CanSubmit(u.session.Snapshot(), content) {
		return false
	}

	u.mu.Lock()
	u.notice = ""
	u.mu.Unlock()
	go u.session.Submit(u.ctx, content)
	return true
}

func (u *UI) runCommand(cmd command) {
	u.log.Debug("command ", cmd.name, " ", cmd.arg)
	switch cmd.name {
	case "/help":
		u.setNotice(helpText())
	case "/bye":
		u.setNotice("Bye bye")
		u.app.Stop()
	case "/debug":
		u.toggleDebugConsole()
	case "/prompts":
		u.showPromptModal()
	case "/prompt":
		n, err := promptIndex(cmd.arg, len(u.catalog.Prompts))
		if err != nil {
			u.setNotice(err.Error())
			return
		}
		prompt, _ := u.catalog.Prompt(n)
		u.session.ApplyPromptSuggestion(prompt)
	case "/departments":
		u.setNotice(departmentsText(u.catalog.FilterDepartments(cmd.arg)))
	case "/refresh":
		u.refreshCredentials()
	}
}

func (u *UI) refreshCredentials() {
	if u.refresher == nil {
		u.setNotice("Credential refresh is not available")
		return
	}
	u.setNotice("Refreshing credentials...")
	go func() {
		res := u.refresher.Refresh(u.ctx)
		switch {
		case res.OK:
			u.setNotice("Credentials refreshed successfully")
		case errors.Is(res.Err, maintenance.ErrRefreshInProgress):
			u.setNotice("A credential refresh is already running")
		default:
			u.setNotice(fmt.Sprintf("Failed to refresh credentials: %v", res.Err))
		}
	}()
}

func (u *UI) toggleDebugConsole() {
	if u.debugVisible {
		u.mainFlex.RemoveItem(u.debugConsole)
		u.setNotice("Debug console disabled")
	} else {
		u.mainFlex.AddItem(u.debugConsole, 0, 1, false)
		u.setNotice("Debug console enabled")
	}
	u.debugVisible = !u.debugVisible
}

func createModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

// showPromptModal lists the accounting prompts. Picking one stages it in the input
// box; nothing is sent until the user presses enter.
func (u *UI) showPromptModal() {
	closeModal := func() {
		u.pages.RemovePage(promptModalPage)
		u.app.SetFocus(u.input)
	}

	list := tview.NewList()
	list.SetBorder(true).SetTitle("Accounting prompts")
	for i, prompt := range u.catalog.Prompts {
		prompt := prompt
		list.AddItem(truncate(prompt, 70), "", '1'+rune(i), func() {
			u.log.Info("Selected prompt: ", prompt)
			u.session.ApplyPromptSuggestion(prompt)
			closeModal()
		})
	}
	list.AddItem("Back", "", 'q', closeModal)

	height := len(u.catalog.Prompts) + 3
	u.pages.AddPage(promptModalPage, createModal(list, 80, height), true, true)
	u.app.SetFocus(list)
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max-3]) + "..."
}
