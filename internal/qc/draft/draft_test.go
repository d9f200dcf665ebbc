package draft

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPath(t *testing.T) {
	m := New()
	assert.True(t, m.Editable())

	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, StatePreviewing, m.State)
	assert.False(t, m.Editable())

	require.NoError(t, m.BeginSubmit())
	assert.Equal(t, StateSubmitting, m.State)

	require.NoError(t, m.CompleteSubmit("upload failed"))
	assert.Equal(t, StateSubmitted, m.State)
	assert.Equal(t, []string{"upload failed"}, m.Warnings)
	assert.JSONEq(t, `{"a":1}`, string(m.Payload()))
}

func TestSnapshotIsImmutable(t *testing.T) {
	m := New()
	src := json.RawMessage(`{"a":1}`)
	require.NoError(t, m.SaveAndContinue(src))

	src[5] = '9'
	p := m.Payload()
	p[5] = '8'

	assert.JSONEq(t, `{"a":1}`, string(m.Snapshot))
}

func TestBackToEditReplacesSnapshot(t *testing.T) {
	m := New()
	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{"v":1}`)))
	require.NoError(t, m.BackToEdit())
	assert.Nil(t, m.Snapshot)
	assert.True(t, m.Editable())

	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{"v":2}`)))
	assert.JSONEq(t, `{"v":2}`, string(m.Payload()))
}

func TestDuplicateSubmitRejected(t *testing.T) {
	m := New()
	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{}`)))
	require.NoError(t, m.BeginSubmit())

	assert.ErrorIs(t, m.BeginSubmit(), ErrSubmitInFlight)
}

func TestFailSubmitReturnsToPreview(t *testing.T) {
	m := New()
	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{}`)))
	require.NoError(t, m.BeginSubmit())

	require.NoError(t, m.FailSubmit(errors.New("backend down")))
	assert.Equal(t, StatePreviewing, m.State)
	assert.Equal(t, "backend down", m.LastError)

	require.NoError(t, m.BeginSubmit())
	assert.Empty(t, m.LastError)
}

func TestInvalidTransitions(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.BeginSubmit(), ErrInvalidTransition)
	assert.ErrorIs(t, m.BackToEdit(), ErrInvalidTransition)
	assert.ErrorIs(t, m.CompleteSubmit(), ErrInvalidTransition)
	assert.ErrorIs(t, m.SaveAndContinue(nil), ErrEmptySnapshot)

	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{}`)))
	assert.ErrorIs(t, m.SaveAndContinue(json.RawMessage(`{}`)), ErrInvalidTransition)

	require.NoError(t, m.BeginSubmit())
	require.NoError(t, m.CompleteSubmit())
	assert.ErrorIs(t, m.BackToEdit(), ErrInvalidTransition)
	assert.ErrorIs(t, m.BeginSubmit(), ErrInvalidTransition)
}

func TestMachineRoundTrip(t *testing.T) {
	m := New()
	require.NoError(t, m.SaveAndContinue(json.RawMessage(`{"x":null}`)))

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var back Machine
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, StatePreviewing, back.State)
	require.NoError(t, back.BeginSubmit())
}
