package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dashmon/internal/report/excel"
	"dashmon/internal/report/html"
)

// Registry manages snapshot writers by format name.
type Registry struct {
	writers map[string]SnapshotWriter
}

// NewRegistry creates a registry with the Excel and HTML writers registered.
// A nil timezone defaults to UTC. htmlTemplatePath is optional; if empty, the
// HTML writer uses the embedded default template.
func NewRegistry(timezone *time.Location, htmlTemplatePath string) *Registry {
	if timezone == nil {
		timezone = time.UTC
	}

	excelWriter := excel.NewWriter(timezone)
	htmlWriter := html.NewWriter(timezone, htmlTemplatePath)

	r := &Registry{
		writers: make(map[string]SnapshotWriter),
	}
	r.writers[excelWriter.Format()] = excelWriter
	r.writers[htmlWriter.Format()] = htmlWriter

	return r
}

// Get returns a writer for the specified format. Format names are
// case-insensitive.
func (r *Registry) Get(format string) (SnapshotWriter, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalized]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q, supported formats: %s",
			format, strings.Join(r.GetAll(), ", "))
	}

	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
func (r *Registry) Has(format string) bool {
	_, ok := r.writers[strings.ToLower(strings.TrimSpace(format))]
	return ok
}
