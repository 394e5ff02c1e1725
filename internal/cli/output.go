// Package cli provides output formatting for the notesearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hyperjump/notesearch/internal/models"
	"github.com/hyperjump/notesearch/internal/storage"
	"github.com/hyperjump/notesearch/pkg/utils"
)

// OutputFormat is the format for query result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ContentPreviewLen is the number of characters of chunk content shown in text output.
const ContentPreviewLen = 200

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	pathColor   = color.New(color.FgGreen)
	scoreColor  = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

// ParseOutputFormat maps a flag value to an OutputFormat. Empty selects text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact:
		return OutputCompact, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteResults writes a query response to w in the given format.
func WriteResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for i, r := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", i+1, r.Score(), displayPath(r), oneLine(utils.Truncate(r.Content, 80)))
		}
		return nil
	default:
		writeResultsText(w, response)
		return nil
	}
}

func writeResultsText(w io.Writer, response *models.QueryResponse) {
	mode := "vector"
	if response.Hybrid {
		mode = "hybrid"
	}
	headerColor.Fprintf(w, "\nFound %d results in %dms (%s)\n\n", response.Total, response.QueryTime, mode)
	for i, r := range response.Results {
		writeOneResult(w, i+1, r)
	}
}

func writeOneResult(w io.Writer, rank int, r models.NoteResult) {
	dimColor.Fprintln(w, "─────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "Rank: %d | Score: %s", rank, scoreColor.Sprintf("%.4f", r.Score()))
	if r.HybridScore != nil && r.BM25Score != nil {
		fmt.Fprintf(w, " (Vector: %.4f, BM25: %.4f)", r.VectorScore, *r.BM25Score)
	}
	fmt.Fprintln(w)
	if p := displayPath(r); p != "" {
		fmt.Fprintf(w, "File: %s\n", pathColor.Sprint(p))
	}
	if r.Date != "" {
		fmt.Fprintf(w, "Date: %s\n", r.Date)
	}
	if r.ChunkID != "" {
		chunk := r.ChunkID
		if r.ChunkType != "" {
			chunk += " (" + r.ChunkType + ")"
		}
		fmt.Fprintf(w, "Chunk: %s\n", chunk)
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Content, ContentPreviewLen))
}

// WriteStatus writes a store status report to w.
func WriteStatus(w io.Writer, st *storage.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	headerColor.Fprintln(w, "Note store")
	fmt.Fprintf(w, "  Location:   %s\n", st.Location)
	fmt.Fprintf(w, "  Collection: %s\n", st.Collection)
	fmt.Fprintf(w, "  Index:      %s", st.IndexType)
	if st.SQLiteBuild != "" {
		fmt.Fprintf(w, " (%s)", st.SQLiteBuild)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Embedding:  %s, %d dimensions\n", st.EmbeddingProvider, st.EmbeddingDimensions)
	if st.Error != "" {
		fmt.Fprintf(w, "  Records:    %s\n", color.RedString("unavailable: %s", st.Error))
	} else {
		fmt.Fprintf(w, "  Records:    %d\n", st.Records)
	}
	if st.Disk.Files > 0 {
		fmt.Fprintf(w, "  Disk:       %s in %d files\n", FormatBytes(st.Disk.Bytes), st.Disk.Files)
	}
	return nil
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func displayPath(r models.NoteResult) string {
	if r.Filepath != "" {
		return r.Filepath
	}
	return r.Filename
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
