package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPasswordFromStdin(t *testing.T) {
	pwd, err := readPassword(true, strings.NewReader("s3cret\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pwd)

	_, err = readPassword(true, strings.NewReader("\n"))
	assert.ErrorIs(t, err, errEmptyPassword)
}

func TestReadPasswordFromTerminal(t *testing.T) {
	orig := readPasswordFunc
	defer func() { readPasswordFunc = orig }()

	readPasswordFunc = func(int) ([]byte, error) { return []byte("hunter22"), nil }
	pwd, err := readPassword(false, nil)
	require.NoError(t, err)
	assert.Equal(t, "hunter22", pwd)

	readPasswordFunc = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = readPassword(false, nil)
	assert.EqualError(t, err, "not a terminal")
}
