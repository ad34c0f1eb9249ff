package statusline

import (
	"fmt"
	"strings"
)

// Separator joins rendered widgets.
const Separator = " | "

// Select returns the widgets named in names, in that order.
func Select(names []string) ([]Widget, error) {
	byName := make(map[string]Widget, len(All))
	for _, w := range All {
		byName[w.Name] = w
	}

	widgets := make([]Widget, 0, len(names))
	for _, name := range names {
		w, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown widget %q", name)
		}
		widgets = append(widgets, w)
	}
	return widgets, nil
}

// Default returns the default widget layout.
func Default() []Widget {
	widgets, _ := Select(DefaultNames)
	return widgets
}

// NeedsGit reports whether any widget reads repository state.
func NeedsGit(widgets []Widget) bool {
	for _, w := range widgets {
		if w.NeedsGit {
			return true
		}
	}
	return false
}

// Render draws the widgets in order, skipping the ones with nothing to show.
func Render(widgets []Widget, v View) string {
	parts := make([]string, 0, len(widgets))
	for _, w := range widgets {
		text, ok := w.Render(v)
		if !ok || text == "" {
			text = w.Fallback
		}
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, Separator)
}
