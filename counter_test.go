package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterHandlers(t *testing.T) {
	for _, start := range []int{-3, 0, 7} {
		for k := 0; k < 5; k++ {
			c := counter{count: start}
			for i := 0; i < k; i++ {
				c.increase()
			}
			assert.Equal(t, start+k, c.count, "increase %d times from %d", k, start)

			c = counter{count: start}
			for i := 0; i < k; i++ {
				c.decrease()
			}
			assert.Equal(t, start-k, c.count, "decrease %d times from %d", k, start)
		}

		c := counter{count: start}
		c.reset()
		assert.Equal(t, 0, c.count)
		c.reset()
		assert.Equal(t, 0, c.count)
	}
}

// play runs one frame with the given buttons clicked and returns the page.
func play(s *session[counter], clicks ...ID) []command {
	queue := make(chan event, len(clicks))
	for _, id := range clicks {
		queue <- event{ID: id, Event: eventClicked}
	}
	s.dispatch(queue)
	return s.render()
}

func displayed(t *testing.T, s *session[counter]) string {
	t.Helper()
	st, ok := s.elems.Get(idCount)
	require.True(t, ok, "count is not on the page")
	return st.HTML
}

func TestCounterApp(t *testing.T) {
	for name, tt := range map[string]struct {
		frames [][]ID
		want   string
	}{
		"initial": {
			want: "Count: 0",
		},
		"increase increase decrease": {
			frames: [][]ID{{idIncrease}, {idIncrease}, {idDecrease}},
			want:   "Count: 1",
		},
		"decrease decrease reset": {
			frames: [][]ID{{idDecrease}, {idDecrease}, {idReset}},
			want:   "Count: 0",
		},
		"negative": {
			frames: [][]ID{{idDecrease}},
			want:   "Count: -1",
		},
		"reset twice": {
			frames: [][]ID{{idIncrease}, {idReset}, {idReset}},
			want:   "Count: 0",
		},
		"clicks in one frame are not merged": {
			frames: [][]ID{{idIncrease, idIncrease, idDecrease}, nil},
			want:   "Count: 1",
		},
	} {
		t.Run(name, func(t *testing.T) {
			s := newSession(counter{}, counterApp)
			play(s)
			for _, clicks := range tt.frames {
				play(s, clicks...)
			}
			assert.Equal(t, "<h3 id='count'>"+tt.want+"</h3>", displayed(t, s))
		})
	}
}

func TestCounterApp_View(t *testing.T) {
	s := newSession(counter{}, counterApp)

	cmds := play(s)
	require.Len(t, cmds, 4)
	assert.Equal(t, command{ID: idCount, Kind: kindAdd, Data: "<h3 id='count'>Count: 0</h3>"}, cmds[0])
	for i, label := range []string{"INCREASE", "DECREASE", "RESET"} {
		assert.Equal(t, kindAdd, cmds[i+1].Kind)
		assert.Contains(t, cmds[i+1].Data, ">"+label+"</button>")
	}
	assert.Equal(t, []ID{idIncrease, idDecrease, idReset}, []ID{cmds[1].ID, cmds[2].ID, cmds[3].ID})
}

func TestCounterApp_ShowsNewValueInSameFrame(t *testing.T) {
	s := newSession(counter{}, counterApp)
	play(s)

	cmds := play(s, idIncrease)
	assert.Equal(t, []command{
		{ID: idCount, Kind: kindReplace, Data: "<h3 id='count'>Count: 1</h3>"},
	}, cmds)
}

func TestCounterApp_SessionsAreIndependent(t *testing.T) {
	a := newSession(counter{}, counterApp)
	b := newSession(counter{}, counterApp)
	play(a)
	play(b)

	play(a, idIncrease)
	play(a, idIncrease)

	assert.Equal(t, 2, a.state.count)
	assert.Equal(t, 0, b.state.count)
}
