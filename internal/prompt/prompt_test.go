package prompt

import (
	"testing"

	"github.com/coshell/coshell/internal/state"
	"github.com/coshell/coshell/internal/styledbuf"
	"github.com/stretchr/testify/assert"
)

type fakeShell struct{ User string }

func TestFromSidesRendersBothSides(t *testing.T) {
	store := state.NewStore()
	p := FromSides[*fakeShell](
		func(sh *fakeShell) *styledbuf.StyledBuf { return styledbuf.New(sh.User + "> ") },
		func() *styledbuf.StyledBuf { return styledbuf.New("[ok]") },
	)

	left := p.Left.Render(&fakeShell{User: "amy"}, store)
	right := p.Right.Render(&fakeShell{User: "amy"}, store)
	assert.Equal(t, "amy> ", left.Content())
	assert.Equal(t, "[ok]", right.Content())
}

func TestFromLeftRightSideIsEmpty(t *testing.T) {
	store := state.NewStore()
	p := FromLeft[*fakeShell](func() *styledbuf.StyledBuf { return styledbuf.New("$ ") })
	assert.Equal(t, "", p.Right.Render(&fakeShell{}, store).Content())
}

func TestDefaultPrompt(t *testing.T) {
	store := state.NewStore()
	p := Default[*fakeShell]()
	left := p.Left.Render(&fakeShell{}, store)
	assert.Contains(t, left.Content(), ">")
}
