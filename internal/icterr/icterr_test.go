package icterr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIncludesLineWhenKnown(t *testing.T) {
	assert := assert.New(t)
	err := Parsef(12, "unexpected token %q", ";")
	assert.Contains(err.Error(), "line 12")
	assert.Contains(err.Error(), "ParseError")
}

func TestErrorOmitsLineWhenNotKnown(t *testing.T) {
	assert := assert.New(t)
	err := Grammarf("undefined nonterminal %q", "expr")
	assert.NotContains(err.Error(), "line")
}

func TestKindIsRecoverableFromError(t *testing.T) {
	assert := assert.New(t)
	err := Codegenf(0, "boom")
	var ie *Error
	assert.True(errors.As(err, &ie))
	assert.Equal(Codegen, ie.Kind())
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	assert := assert.New(t)
	cause := errors.New("underlying failure")
	err := Wrap(VM, 0, cause, "external call failed")
	assert.ErrorIs(err, cause)
}

func TestVMfEmbedsInstructionPointer(t *testing.T) {
	assert := assert.New(t)
	err := VMf(7, "unknown opcode")
	assert.Contains(err.Error(), "ip=7")
}
