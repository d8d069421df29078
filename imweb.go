package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
)

type ID string

const eventClicked = "clicked"

var errUnknownElement = errors.New("unknown element")

// incoming event, e.g. button click
type event struct {
	ID    ID     `json:"id"`
	Event string `json:"event"`
}

type commandKind string

const (
	kindAdd     commandKind = "ADD"
	kindRemove  commandKind = "REMOVE"
	kindReplace commandKind = "REPLACE"
)

// outgoing DOM update
type command struct {
	ID   ID          `json:"id"`
	Data string      `json:"data"`
	Kind commandKind `json:"kind"`
}

type elemState struct {
	HTML    string
	button  bool
	clicked bool
}

// Context is passed to the app function once per pass of a frame.
// Elements not emitted during the last pass are removed from the page.
type Context[S any] struct {
	commands []command
	state    *S
	elems    *syncMap[ID, elemState]
	seen     map[ID]struct{}
	changed  bool
}

func newContext[S any](state *S, elems *syncMap[ID, elemState]) *Context[S] {
	return &Context[S]{
		state: state,
		elems: elems,
		seen:  map[ID]struct{}{},
	}
}

func (c *Context[S]) State() *S {
	return c.state
}

func (c *Context[S]) emit(id ID, markup string, button bool) elemState {
	c.seen[id] = struct{}{}
	st, ok := c.elems.Get(id)
	switch {
	case !ok:
		st = elemState{HTML: markup, button: button}
		c.elems.Set(id, st)
		c.commands = append(c.commands, command{ID: id, Data: markup, Kind: kindAdd})
	case st.HTML != markup:
		st.HTML = markup
		st.button = button
		c.elems.Set(id, st)
		c.commands = append(c.commands, command{ID: id, Data: markup, Kind: kindReplace})
	}
	return st
}

func (c *Context[S]) element(id ID, tag, text string) {
	c.emit(id, fmt.Sprintf(
		`<%[1]s id='%[2]s'>%[3]s</%[1]s>`,
		tag, html.EscapeString(string(id)), html.EscapeString(text),
	), false)
}

func (c *Context[S]) text(id ID, text string) {
	c.element(id, "div", text)
}

func (c *Context[S]) heading(id ID, text string) {
	c.element(id, "h3", text)
}

// button reports whether it was clicked since the previous frame.
func (c *Context[S]) button(id ID, label string) bool {
	// strings always marshal
	jsID, _ := json.Marshal(string(id))
	notify := fmt.Sprintf(`window.IMWEB_notify({id: %s, event: %q})`, jsID, eventClicked)
	st := c.emit(id, fmt.Sprintf(
		`<button id='%s' onclick='%s'>%s</button>`,
		html.EscapeString(string(id)), html.EscapeString(notify), html.EscapeString(label),
	), true)
	if !st.clicked {
		return false
	}
	st.clicked = false
	c.elems.Set(id, st)
	c.changed = true
	return true
}

// sweep drops elements that were not emitted.
func (c *Context[S]) sweep() []command {
	var removed []command
	c.elems.Range(func(id ID, _ elemState) bool {
		if _, ok := c.seen[id]; !ok {
			removed = append(removed, command{ID: id, Kind: kindRemove})
		}
		return true
	})
	for _, cmd := range removed {
		c.elems.Delete(cmd.ID)
	}
	return removed
}

type AppFunc[S any] func(*Context[S])

// session is a mounted app: its own copy of the state and the elements the
// browser currently shows. Only the frame loop touches it.
type session[S any] struct {
	app     AppFunc[S]
	state   S
	elems   syncMap[ID, elemState]
	pending []event
}

// maxPasses bounds re-running the app after a handler changed the state.
const maxPasses = 2

func newSession[S any](init S, app AppFunc[S]) *session[S] {
	return &session[S]{app: app, state: init}
}

// dispatch applies at most one event per element, deferring the rest to the
// following frames in arrival order. Rejected events are returned as errors.
func (s *session[S]) dispatch(queue <-chan event) []error {
	events := s.pending
	s.pending = nil
EVENTS_LOOP:
	for {
		select {
		case e := <-queue:
			events = append(events, e)
		default:
			break EVENTS_LOOP
		}
	}

	var errs []error
	updatedIDs := map[ID]struct{}{}
	for _, e := range events {
		if _, ok := updatedIDs[e.ID]; ok {
			s.pending = append(s.pending, e)
			continue
		}
		if err := s.apply(e); err != nil {
			errs = append(errs, err)
			continue
		}
		updatedIDs[e.ID] = struct{}{}
	}
	return errs
}

func (s *session[S]) apply(e event) error {
	if e.Event != eventClicked {
		return fmt.Errorf("event %q on %q: unsupported", e.Event, e.ID)
	}
	st, ok := s.elems.Get(e.ID)
	if !ok || !st.button {
		return fmt.Errorf("click on %q: %w", e.ID, errUnknownElement)
	}
	st.clicked = true
	s.elems.Set(e.ID, st)
	return nil
}

// render runs the app and returns the commands bringing the page up to date.
func (s *session[S]) render() []command {
	var commands []command
	for pass := 1; ; pass++ {
		ctx := newContext(&s.state, &s.elems)
		s.app(ctx)
		commands = append(commands, ctx.commands...)
		if !ctx.changed || pass == maxPasses {
			return append(commands, ctx.sweep()...)
		}
	}
}
