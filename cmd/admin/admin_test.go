package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	gotName, gotPassword string
	gotRole              models.Role
	err                  error
}

func (f *fakeCreator) Create(ctx context.Context, userName, password string, role models.Role) (*models.User, error) {
	f.gotName, f.gotPassword, f.gotRole = userName, password, role
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 1, UserName: userName, Role: role}, nil
}

func scripted(inputs ...string) *prompter {
	i := 0
	return &prompter{
		out: &bytes.Buffer{},
		read: func() ([]byte, error) {
			if i >= len(inputs) {
				return nil, errors.New("eof")
			}
			s := inputs[i]
			i++
			return []byte(s), nil
		},
	}
}

func TestRun_CreatesAdmin(t *testing.T) {
	var out bytes.Buffer
	c := &fakeCreator{}

	err := run(context.Background(), []string{"create-admin", "-d", "postgres://x", "-u", "root"}, &out, scripted("Passw0rd1", "Passw0rd1"), c)
	require.NoError(t, err)

	assert.Equal(t, "root", c.gotName)
	assert.Equal(t, "Passw0rd1", c.gotPassword)
	assert.Equal(t, models.RoleAdmin, c.gotRole)
	assert.Contains(t, out.String(), `admin "root" created with id 1`)
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"unknown command", []string{"drop-all"}},
		{"missing user", []string{"create-admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCreator{}
			err := run(context.Background(), tt.args, &bytes.Buffer{}, scripted(), c)
			assert.ErrorIs(t, err, errUsage)
			assert.Empty(t, c.gotName)
		})
	}
}

func TestRun_PasswordMismatch(t *testing.T) {
	c := &fakeCreator{}
	err := run(context.Background(), []string{"create-admin", "-u", "root"}, &bytes.Buffer{}, scripted("Passw0rd1", "Passw0rd2"), c)
	assert.ErrorIs(t, err, errPasswordMismatch)
	assert.Empty(t, c.gotName)
}

func TestRun_ReadError(t *testing.T) {
	err := run(context.Background(), []string{"create-admin", "-u", "root"}, &bytes.Buffer{}, scripted(), &fakeCreator{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read password")
}

func TestRun_CreateError(t *testing.T) {
	c := &fakeCreator{err: common.ErrDuplicateUsername}
	err := run(context.Background(), []string{"create-admin", "-u", "root"}, &bytes.Buffer{}, scripted("Passw0rd1", "Passw0rd1"), c)
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)
}

func TestPrompter_WipesInput(t *testing.T) {
	first := []byte("Passw0rd1")
	second := []byte("Passw0rd1")
	bufs := [][]byte{first, second}
	i := 0
	p := &prompter{out: &bytes.Buffer{}, read: func() ([]byte, error) {
		b := bufs[i]
		i++
		return b, nil
	}}

	pw, err := p.password()
	require.NoError(t, err)
	assert.Equal(t, "Passw0rd1", pw)
	assert.Equal(t, make([]byte, 9), first)
	assert.Equal(t, make([]byte, 9), second)
}
