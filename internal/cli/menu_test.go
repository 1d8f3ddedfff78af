package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeActions struct {
	calls []string
	fail  bool
}

func (f *fakeActions) record(name string) error {
	f.calls = append(f.calls, name)
	if f.fail {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeActions) DeleteAll(context.Context) error     { return f.record("delete-all") }
func (f *fakeActions) DeleteSession(context.Context) error { return f.record("delete-session") }
func (f *fakeActions) ListLocal(context.Context) error     { return f.record("list-local") }
func (f *fakeActions) ListRemote(context.Context) error    { return f.record("list-remote") }
func (f *fakeActions) ClearLocal(context.Context) error    { return f.record("clear-local") }

func TestRunMenu_Dispatch(t *testing.T) {
	var out bytes.Buffer
	a := &fakeActions{}
	in := bufio.NewReader(strings.NewReader("3\n4\n\n9\nabc\n1\n2\n5\n6\n1\n"))

	runMenu(context.Background(), a, in, &out)

	assert.Equal(t, []string{"list-local", "list-remote", "delete-all", "delete-session", "clear-local"}, a.calls)

	assert.Equal(t, 3, strings.Count(out.String(), "Invalid choice, please try again"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "Goodbye!"))
	assert.Contains(t, out.String(), "File Cleanup Utility")
}

func TestRunMenu_EOFExits(t *testing.T) {
	a := &fakeActions{}
	runMenu(context.Background(), a, bufio.NewReader(strings.NewReader("3")), &bytes.Buffer{})
	assert.Equal(t, []string{"list-local"}, a.calls)
}

func TestRunMenu_ErrorKeepsLooping(t *testing.T) {
	var out bytes.Buffer
	a := &fakeActions{fail: true}
	runMenu(context.Background(), a, bufio.NewReader(strings.NewReader("1\n3\n6\n")), &out)

	assert.Equal(t, []string{"delete-all", "list-local"}, a.calls)
	assert.Contains(t, out.String(), "Error: boom")
}

func TestRunMenu_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &fakeActions{}
	runMenu(ctx, a, bufio.NewReader(strings.NewReader("1\n")), &bytes.Buffer{})
	assert.Empty(t, a.calls)
}
