package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryResultTypeComparisonAlwaysBool(t *testing.T) {
	assert := assert.New(t)
	got := BinaryResultType(">", ValueType{Kind: Int}, ValueType{Kind: Str})
	assert.Equal(ValueType{Kind: Bool}, got)
}

func TestBinaryResultTypeStringDominates(t *testing.T) {
	assert := assert.New(t)
	got := BinaryResultType("+", ValueType{Kind: Str}, ValueType{Kind: Int})
	assert.Equal(ValueType{Kind: Str}, got)
}

func TestBinaryResultTypeIntRealPromotesToReal(t *testing.T) {
	assert := assert.New(t)
	got := BinaryResultType("+", ValueType{Kind: Int}, ValueType{Kind: Real})
	assert.Equal(ValueType{Kind: Real}, got)
}

func TestBinaryResultTypeBothInt(t *testing.T) {
	assert := assert.New(t)
	got := BinaryResultType("*", ValueType{Kind: Int}, ValueType{Kind: Int})
	assert.Equal(ValueType{Kind: Int}, got)
}

func TestBinaryResultTypeUnknownOperandIsUnknown(t *testing.T) {
	assert := assert.New(t)
	got := BinaryResultType("+", ValueType{Kind: Unknown}, ValueType{Kind: Int})
	assert.Equal(ValueType{Kind: Unknown}, got)
}
