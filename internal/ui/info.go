package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lumipallolabs/fsview/internal/cache"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/model"
)

// NodeInfo is what the info bar shows about the selected node
type NodeInfo struct {
	Name     string
	Path     string
	Kind     model.Kind
	Size     int64
	Share    float64 // fraction of the parent's total size
	Counts   [model.NumKinds]int32
	Delta    int64
	Seen     bool // present in the previous scan
	History  bool // a previous scan exists
	Deleted  bool
	Form     string // TreeV form, empty in other modes
	FileType string
	Mode     os.FileMode
	Created  string
	Modified string
}

// DescribeNode gathers the info bar fields for id. It stats the file and
// sniffs its content type, so call it on selection change, not per frame.
func DescribeNode(e *layout.Engine, changes *cache.Changes, id model.NodeID) NodeInfo {
	tree := e.Tree()
	node := tree.Node(id)
	info := NodeInfo{
		Name:    node.Name,
		Path:    tree.Path(id),
		Kind:    node.Kind,
		Size:    node.TotalSize(),
		Counts:  node.SubtreeCounts,
		Deleted: node.IsDeleted,
	}
	if parent := tree.Parent(id); parent != model.MetaRoot {
		if total := tree.Node(parent).TotalSize(); total > 0 {
			info.Share = float64(info.Size) / float64(total)
		}
	}
	info.Delta, info.Seen = changes.Delta(tree, id)
	info.History = changes != nil
	if e.Ready() && e.Mode() == layout.ModeTreeV {
		form, _ := e.TreeV().Form(id)
		info.Form = form.String()
	}

	if node.IsDeleted {
		return info
	}
	if st, err := os.Lstat(info.Path); err == nil {
		info.Mode = st.Mode()
		info.Created = FormatTime(getCreationTime(st))
		info.Modified = FormatTime(st.ModTime())
	}
	if node.Kind == model.KindRegular {
		info.FileType = fileType(info.Path)
	}
	return info
}

// fileType detects a file's type from its content
func fileType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	if ext := mtype.Extension(); ext != "" {
		return strings.ToUpper(strings.TrimPrefix(ext, "."))
	}
	return mtype.String()
}

// countSummary renders the per-kind descendant counts of a directory
func countSummary(counts [model.NumKinds]int32) string {
	var parts []string
	for k := model.KindDirectory; k < model.NumKinds; k++ {
		n := counts[k]
		if n == 0 {
			continue
		}
		name := k.String()
		switch k {
		case model.KindDirectory:
			name = "dir"
		case model.KindRegular:
			name = "file"
		}
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	return strings.Join(parts, ", ")
}

// View renders the info as a single bar line
func (i NodeInfo) View(width int, diff bool) string {
	dim := lipgloss.NewStyle().Foreground(ColorMuted)
	sep := dim.Render(" │ ")

	nameStyle := lipgloss.NewStyle().Foreground(ColorFile)
	if i.Kind == model.KindDirectory {
		nameStyle = lipgloss.NewStyle().Foreground(ColorDir).Bold(true)
	}

	parts := []string{nameStyle.Render(i.Name), StatsStyle.Render(FormatSize(i.Size))}
	if i.Share > 0 {
		parts = append(parts, dim.Render(fmt.Sprintf("%.1f%% of parent", 100*i.Share)))
	}
	if i.Kind == model.KindDirectory {
		if s := countSummary(i.Counts); s != "" {
			parts = append(parts, dim.Render(s))
		}
	} else if i.FileType != "" {
		parts = append(parts, dim.Render(i.FileType))
	} else {
		parts = append(parts, dim.Render(i.Kind.String()))
	}
	if i.Form != "" {
		parts = append(parts, dim.Render(i.Form))
	}
	if i.Mode != 0 {
		parts = append(parts, dim.Render(i.Mode.String()))
	}
	if i.Created != "" && i.Created != i.Modified {
		parts = append(parts, dim.Render("C: "+i.Created))
	}
	if i.Modified != "" {
		parts = append(parts, dim.Render("M: "+i.Modified))
	}
	if diff {
		switch {
		case i.Deleted:
			parts = append(parts, DeletedBadge.Render("DELETED"))
		case i.History && !i.Seen:
			parts = append(parts, NewBadge.Render("NEW"))
		case i.Delta > 0:
			parts = append(parts, GrewStyle.Render(FormatDelta(i.Delta)))
		case i.Delta < 0:
			parts = append(parts, ShrunkStyle.Render(FormatDelta(i.Delta)))
		}
	}

	return lipgloss.NewStyle().Padding(0, 1).MaxWidth(width).Render(strings.Join(parts, sep))
}
