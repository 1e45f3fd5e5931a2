package info

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
)

const (
	CategorySystemArea       = "System Area"
	CategoryVolumeDescriptor = "Volume Descriptor"
	CategoryPathTable        = "Path Table"
	CategoryDirectoryExtent  = "Directory Extent"
	CategoryBootCatalog      = "Boot Catalog"
	CategoryBootImage        = "Boot Image"
	CategoryFileExtent       = "File Extent"
)

// LayoutItem is a single placed structure.
type LayoutItem struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Detail   string `json:"detail,omitempty"`
	Offset   int64  `json:"offset"`
	Length   int    `json:"length"`
}

func NewISOLayout() *ISOLayout {
	return &ISOLayout{
		Items: make([]*LayoutItem, 0),
	}
}

// ISOLayout records where every structure of a built image was placed.
type ISOLayout struct {
	VolumeSpaceSize uint32        `json:"volume_space_size"`
	Items           []*LayoutItem `json:"items"`
}

// Add appends an item and keeps the list sorted by offset.
func (l *ISOLayout) Add(category, name, detail string, offset int64, length int) {
	l.Items = append(l.Items, &LayoutItem{
		Category: category,
		Name:     name,
		Detail:   detail,
		Offset:   offset,
		Length:   length,
	})

	slices.SortStableFunc(l.Items, func(a, b *LayoutItem) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
}

// AddObject appends every object reported by obj.
func (l *ISOLayout) AddObject(category string, obj ImageObject) {
	for _, o := range obj.GetObjects() {
		l.Add(category, o.Name(), o.Description(), o.Offset(), o.Size())
	}
}

// Find returns the first item with the given category and name, or nil.
func (l *ISOLayout) Find(category, name string) *LayoutItem {
	for _, item := range l.Items {
		if item.Category == category && item.Name == name {
			return item
		}
	}
	return nil
}

// PrettyJSON returns a pretty-printed JSON representation of the ISO layout.
func (l *ISOLayout) PrettyJSON() string {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON: %v", err)
	}
	return string(data)
}

// Print writes the layout to w in image order.
// - `useColor` controls whether colored output is used.
// - `useHexOffset` prints offsets in hexadecimal if true.
func (l *ISOLayout) Print(w io.Writer, useColor bool, useHexOffset bool) {
	colorMap := map[string]*color.Color{
		CategorySystemArea:       color.New(color.FgBlue, color.Bold),
		CategoryVolumeDescriptor: color.New(color.FgYellow, color.Bold),
		CategoryPathTable:        color.New(color.FgMagenta, color.Bold),
		CategoryDirectoryExtent:  color.New(color.FgCyan, color.Bold),
		CategoryBootCatalog:      color.New(color.FgRed, color.Bold),
		CategoryBootImage:        color.New(color.FgRed),
		CategoryFileExtent:       color.New(color.FgGreen),
	}
	header := color.New(color.FgCyan, color.Bold)
	offsetColor := color.New(color.FgGreen)

	paint := func(c *color.Color, s string) string {
		if !useColor || c == nil {
			return s
		}
		return c.Sprint(s)
	}

	// Fixed width settings
	offsetWidth := 14
	categoryWidth := 20
	lengthWidth := 12
	if useHexOffset {
		offsetWidth = 18
	}

	fmt.Fprintln(w, paint(header, "\n=== ISO Layout ==="))
	for _, item := range l.Items {
		offsetStr := fmt.Sprintf("Offset: %*d", offsetWidth-8, item.Offset)
		if useHexOffset {
			offsetStr = fmt.Sprintf("Offset: %#*x", offsetWidth-8, item.Offset)
		}
		detail := item.Name
		if item.Detail != "" {
			detail = fmt.Sprintf("%s (%s)", item.Name, item.Detail)
		}
		fmt.Fprintf(w, "[%s] [%s] [%s] %s\n",
			paint(offsetColor, offsetStr),
			paint(colorMap[item.Category], fmt.Sprintf("%-*s", categoryWidth, item.Category)),
			paint(offsetColor, fmt.Sprintf("%*s", lengthWidth, formatSize(item.Length))),
			detail,
		)
	}
	fmt.Fprintln(w, paint(header, fmt.Sprintf("=== %d sectors ===", l.VolumeSpaceSize)))
}

// formatSize converts a size in bytes to a human-readable format.
func formatSize(size int) string {
	const (
		MB = 1024 * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%8.2f GB", float64(size)/float64(GB))
	case size >= MB:
		return fmt.Sprintf("%8.2f MB", float64(size)/float64(MB))
	default:
		return fmt.Sprintf("%8d B ", size)
	}
}
