package probe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers commands from a table keyed by the joined command line.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	missing map[string]bool
	block   bool
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	out, ok := f.outputs[key]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(out), nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func TestHyprland(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    Window
		wantErr error
	}{
		{"focused", `{"class":"firefox","title":"Docs - Mozilla Firefox"}`, Window{App: "firefox", Title: "Docs - Mozilla Firefox"}, nil},
		{"empty object", `{}`, Window{}, ErrNoWindow},
		{"invalid", "Invalid", Window{}, ErrNoWindow},
		{"empty class", `{"class":"","title":"x"}`, Window{}, ErrNoWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &fakeRunner{outputs: map[string]string{"hyprctl activewindow -j": tt.output}}
			got, err := Hyprland{}.ActiveWindow(context.Background(), run)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSway(t *testing.T) {
	tree := `{"type":"root","nodes":[{"type":"output","nodes":[{"type":"workspace","nodes":[
		{"type":"con","name":"vim main.go","app_id":"foot","focused":false},
		{"type":"con","name":"Slack","app_id":null,"window_properties":{"class":"Slack"},"focused":true}
	]}]}]}`
	run := &fakeRunner{outputs: map[string]string{"swaymsg -t get_tree": tree}}

	got, err := Sway{}.ActiveWindow(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, Window{App: "Slack", Title: "Slack"}, got)

	// A focused workspace means no window has focus.
	run.outputs["swaymsg -t get_tree"] = `{"type":"root","nodes":[{"type":"workspace","focused":true}]}`
	_, err = Sway{}.ActiveWindow(context.Background(), run)
	assert.ErrorIs(t, err, ErrNoWindow)
}

func TestX11(t *testing.T) {
	run := &fakeRunner{outputs: map[string]string{
		"xdotool getactivewindow":        "62914564\n",
		"xprop -id 62914564 WM_CLASS":    `WM_CLASS(STRING) = "code", "Code"` + "\n",
		"xdotool getwindowname 62914564": "main.go - Visual Studio Code\n",
	}}

	got, err := X11{}.ActiveWindow(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, Window{App: "Code", Title: "main.go - Visual Studio Code"}, got)

	delete(run.outputs, "xprop -id 62914564 WM_CLASS")
	got, err = X11{}.ActiveWindow(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", got.App)
}

func TestParseWMClass(t *testing.T) {
	assert.Equal(t, "Code", parseWMClass(`WM_CLASS(STRING) = "code", "Code"`))
	assert.Equal(t, "xterm", parseWMClass(`WM_CLASS(STRING) = "xterm"`))
	assert.Equal(t, "", parseWMClass(`WM_CLASS:  not found.`))
}

func TestNewChain_DropsUnavailableBackends(t *testing.T) {
	run := &fakeRunner{missing: map[string]bool{"hyprctl": true, "xprop": true}}
	chain := NewChain([]string{"hyprland", "sway", "x11", "bogus"}, run, time.Second, nil)
	assert.Equal(t, []string{"sway"}, chain.Names())
}

func TestChain_FallsThroughInOrder(t *testing.T) {
	run := &fakeRunner{
		outputs: map[string]string{
			"hyprctl activewindow -j": "{}",
			"xdotool getactivewindow": "7",
			"xprop -id 7 WM_CLASS":    `WM_CLASS(STRING) = "kitty", "kitty"`,
			"xdotool getwindowname 7": "  ~/src  ",
		},
		errs: map[string]error{"swaymsg -t get_tree": errors.New("sway not running")},
	}
	chain := NewChain([]string{"hyprland", "sway", "x11"}, run, time.Second, nil)

	w, ok := chain.Sample(context.Background())
	require.True(t, ok)
	assert.Equal(t, Window{App: "kitty", Title: "~/src"}, w)
}

func TestChain_NoneWhenEverythingFails(t *testing.T) {
	run := &fakeRunner{}
	chain := NewChain([]string{"hyprland", "x11"}, run, time.Second, nil)

	_, ok := chain.Sample(context.Background())
	assert.False(t, ok)

	empty := NewChain(nil, run, time.Second, nil)
	_, ok = empty.Sample(context.Background())
	assert.False(t, ok)
}

func TestChain_Timeout(t *testing.T) {
	run := &fakeRunner{block: true}
	chain := NewChain([]string{"hyprland", "x11"}, run, 20*time.Millisecond, nil)

	start := time.Now()
	_, ok := chain.Sample(context.Background())
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, run.calls, 1, "an expired tick does not try the remaining backends")
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"hyprland", "sway", "x11"} {
		b, ok := Lookup(name)
		require.True(t, ok)
		assert.Equal(t, name, b.Name())
	}
	_, ok := Lookup("wayfire")
	assert.False(t, ok)
}
