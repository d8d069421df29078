package main

import "fmt"

const (
	idCount    ID = "count"
	idIncrease ID = "increase"
	idDecrease ID = "decrease"
	idReset    ID = "reset"
)

// counter is the state cell of the app. It may go negative.
type counter struct {
	count int
}

func (c *counter) increase() { c.count++ }

func (c *counter) decrease() { c.count-- }

func (c *counter) reset() { c.count = 0 }

func counterApp(ctx *Context[counter]) {
	st := ctx.State()

	ctx.heading(idCount, fmt.Sprint("Count: ", st.count))
	if ctx.button(idIncrease, "INCREASE") {
		st.increase()
	}
	if ctx.button(idDecrease, "DECREASE") {
		st.decrease()
	}
	if ctx.button(idReset, "RESET") {
		st.reset()
	}
}
