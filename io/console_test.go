package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Number(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Output: out}

	assert.NoError(con.Number(0))
	assert.NoError(con.Number(8))
	assert.NoError(con.Number(255))

	assert.Equal("0\n8\n255\n", out.String())
	assert.Equal(8, con.Written())
	assert.False(con.Pending())
}

func TestConsole_Char(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Output: out}

	for _, ch := range []uint8{'H', 'i', '!'} {
		assert.NoError(con.Char(ch))
	}
	assert.Equal("Hi!", out.String())
	assert.True(con.Pending())

	assert.NoError(con.Char('\n'))
	assert.False(con.Pending())

	out.Reset()
	assert.NoError(con.Char(0xe9))
	assert.Equal("é", out.String())
}

func TestConsole_Rewind(t *testing.T) {
	assert := assert.New(t)

	con := &Console{Output: &bytes.Buffer{}}
	assert.NoError(con.Char('x'))
	assert.True(con.Pending())

	con.Rewind()
	assert.Equal(0, con.Written())
	assert.False(con.Pending())
}

func TestConsole_Missing(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}
	assert.ErrorIs(con.Number(1), ErrOutputMissing)
	assert.ErrorIs(con.Char('a'), ErrOutputMissing)
}
