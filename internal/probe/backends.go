package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Hyprland reads `hyprctl activewindow -j`
type Hyprland struct{}

func (Hyprland) Name() string { return "hyprland" }
func (Hyprland) Binaries() []string { return []string{"hyprctl"} }

func (Hyprland) ActiveWindow(ctx context.Context, run Runner) (Window, error) {
	out, err := run.Run(ctx, "hyprctl", "activewindow", "-j")
	if err != nil {
		return Window{}, fmt.Errorf("hyprctl: %w", err)
	}

	var active struct {
		Class string `json:"class"`
		Title string `json:"title"`
	}
	trimmed := strings.TrimSpace(string(out))
	// hyprctl prints "Invalid" or {} when nothing is focused.
	if trimmed == "" || trimmed == "{}" || !strings.HasPrefix(trimmed, "{") {
		return Window{}, ErrNoWindow
	}
	if err := json.Unmarshal([]byte(trimmed), &active); err != nil {
		return Window{}, fmt.Errorf("decoding hyprctl output: %w", err)
	}
	if active.Class == "" {
		return Window{}, ErrNoWindow
	}
	return Window{App: active.Class, Title: active.Title}, nil
}

// Sway walks the tree from `swaymsg -t get_tree` for the focused node
type Sway struct{}

func (Sway) Name() string { return "sway" }
func (Sway) Binaries() []string { return []string{"swaymsg"} }

type swayNode struct {
	Type             string                `json:"type"`
	Name             string                `json:"name"`
	Focused          bool                  `json:"focused"`
	AppID            string                `json:"app_id"`
	WindowProperties *swayWindowProperties `json:"window_properties"`
	Nodes            []swayNode            `json:"nodes"`
	FloatingNodes    []swayNode            `json:"floating_nodes"`
}

// swayWindowProperties is only set for XWayland windows.
type swayWindowProperties struct {
	Class string `json:"class"`
}

func (Sway) ActiveWindow(ctx context.Context, run Runner) (Window, error) {
	out, err := run.Run(ctx, "swaymsg", "-t", "get_tree")
	if err != nil {
		return Window{}, fmt.Errorf("swaymsg: %w", err)
	}

	var root swayNode
	if err := json.Unmarshal(out, &root); err != nil {
		return Window{}, fmt.Errorf("decoding sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil || (node.Type != "con" && node.Type != "floating_con") {
		return Window{}, ErrNoWindow
	}

	app := node.AppID
	if app == "" && node.WindowProperties != nil {
		app = node.WindowProperties.Class
	}
	if app == "" {
		return Window{}, ErrNoWindow
	}
	return Window{App: app, Title: node.Name}, nil
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused {
		return n
	}
	for i := range n.Nodes {
		if f := findFocused(&n.Nodes[i]); f != nil {
			return f
		}
	}
	for i := range n.FloatingNodes {
		if f := findFocused(&n.FloatingNodes[i]); f != nil {
			return f
		}
	}
	return nil
}

// X11 combines xdotool and xprop
type X11 struct{}

func (X11) Name() string { return "x11" }
func (X11) Binaries() []string { return []string{"xdotool", "xprop"} }

func (X11) ActiveWindow(ctx context.Context, run Runner) (Window, error) {
	out, err := run.Run(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return Window{}, fmt.Errorf("xdotool getactivewindow: %w", err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return Window{}, ErrNoWindow
	}

	app := "Unknown"
	if props, err := run.Run(ctx, "xprop", "-id", id, "WM_CLASS"); err == nil {
		if class := parseWMClass(string(props)); class != "" {
			app = class
		}
	}

	title := ""
	if name, err := run.Run(ctx, "xdotool", "getwindowname", id); err == nil {
		title = strings.TrimSpace(string(name))
	}

	return Window{App: app, Title: title}, nil
}

// parseWMClass returns the class part of
// `WM_CLASS(STRING) = "instance", "Class"`.
func parseWMClass(s string) string {
	_, values, found := strings.Cut(s, "=")
	if !found {
		return ""
	}
	parts := strings.Split(values, ",")
	class := strings.TrimSpace(parts[len(parts)-1])
	return strings.Trim(class, `"`)
}
