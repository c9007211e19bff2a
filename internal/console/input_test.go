package console

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader { return bufio.NewReader(strings.NewReader(s)) }

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("alice\r\nrest"), "Enter username: ", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Enter username: ", out.String())

	got, err = GetSimpleText(rdr("lastline"), "", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "", &out)
	assert.Error(t, err)
}

func TestGetSimpleText_KeepsInnerSpaces(t *testing.T) {
	got, err := GetSimpleText(rdr(" bob \n"), "", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, " bob ", got)
}

func TestGetPasswordLine(t *testing.T) {
	r := rdr("Secr3t!Pw\r\nnext\nlast")
	var out bytes.Buffer

	pw, err := GetPasswordLine(r, "Enter passphrase: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("Secr3t!Pw"), pw)

	pw, err = GetPasswordLine(r, "", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("next"), pw)

	pw, err = GetPasswordLine(r, "", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("last"), pw)

	_, err = GetPasswordLine(r, "", &out)
	assert.Error(t, err)
}

func TestGetPasswordLine_Truncates(t *testing.T) {
	pw, err := GetPasswordLine(rdr(strings.Repeat("x", 300)+"\nafter\n"), "", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, pw, maxLineSecret)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword("Enter passphrase: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Enter passphrase: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = GetPassword("", &out)
	assert.Error(t, err)
}

func TestYesNo(t *testing.T) {
	assert.True(t, YesNo(rdr("y\n"), "Admin?", &bytes.Buffer{}))
	assert.True(t, YesNo(rdr("Yes\n"), "Admin?", &bytes.Buffer{}))
	assert.False(t, YesNo(rdr("n\n"), "Admin?", &bytes.Buffer{}))
	assert.False(t, YesNo(rdr("\n"), "Admin?", &bytes.Buffer{}))
	assert.False(t, YesNo(rdr(""), "Admin?", &bytes.Buffer{}))
}
