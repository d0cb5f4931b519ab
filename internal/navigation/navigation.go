package navigation

import "strings"

// Item is one sidebar entry. Group entries have children and no path.
type Item struct {
	Title    string `json:"title"`
	Path     string `json:"path,omitempty"`
	Children []Item `json:"children,omitempty"`
}

// State is the resolved sidebar for one request path.
type State struct {
	Items    []Item `json:"items"`
	Active   string `json:"active,omitempty"`
	Expanded string `json:"expanded,omitempty"`
}

var tree = []Item{
	{Title: "Dashboard", Path: "/dashboard"},
	{Title: "Outlets", Path: "/outlets"},
	{Title: "QR Templates", Path: "/qr-templates"},
	{Title: "Access Control", Children: []Item{
		{Title: "Roles", Path: "/roles"},
		{Title: "Functionalities", Path: "/functionalities"},
	}},
	{Title: "Owners", Path: "/owners"},
	{Title: "Partners", Path: "/partners"},
	{Title: "Search", Path: "/search"},
	{Title: "Customers", Path: "/customer"},
	{Title: "Tickets", Path: "/tickets"},
	{Title: "My Profile", Path: "/profile"},
}

// Tree returns a copy of the fixed sidebar.
func Tree() []Item {
	return cloneItems(tree)
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = item
		if item.Children != nil {
			out[i].Children = cloneItems(item.Children)
		}
	}
	return out
}

// Resolve marks the entry owning path as active and expands its group.
// "/partners/12/edit" resolves to Partners; "/" resolves to Dashboard.
func Resolve(path string) State {
	state := State{Items: Tree()}
	path = normalize(path)
	if path == "/" {
		state.Active = "Dashboard"
		return state
	}

	for _, item := range tree {
		if owns(item.Path, path) {
			state.Active = item.Title
			return state
		}
		for _, child := range item.Children {
			if owns(child.Path, path) {
				state.Active = child.Title
				state.Expanded = item.Title
				return state
			}
		}
	}
	return state
}

// Expand toggles a group open or closed. Expanding a group collapses the
// previously expanded one; expanding it again closes it.
func Expand(current, title string) string {
	if current == title {
		return ""
	}
	for _, item := range tree {
		if item.Title == title && len(item.Children) > 0 {
			return title
		}
	}
	return current
}

func owns(prefix, path string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
