// package formatter renders guild lists in export formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

// Format names accepted by [Export].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ExportToCSV converts guilds to CSV with columns: ID, Name, Members, Owner, Icon
func ExportToCSV(guilds []models.Guild) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Members", "Owner", "Icon"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, g := range guilds {
		record := []string{g.ID, g.Name, strconv.Itoa(g.MemberCount), strconv.FormatBool(g.Owner), g.Icon}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts guilds to a Markdown table under title
func ExportToMarkdown(guilds []models.Guild, title string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Servers**: %d\n\n", len(guilds)))

	if len(guilds) == 0 {
		buf.WriteString("_no servers found_\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| | Name | Members | Owner |\n|---|---|---|---|\n")
	for _, g := range guilds {
		avatar := g.Initial()
		if g.Icon != "" {
			avatar = fmt.Sprintf("![](%s)", g.Icon)
		}
		owner := ""
		if g.Owner {
			owner = "yes"
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", avatar, escapeCell(g.Name), g.MemberCount, owner))
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToText converts guilds to one "Name — N members" line each
func ExportToText(guilds []models.Guild) ([]byte, error) {
	var buf bytes.Buffer
	for _, g := range guilds {
		buf.WriteString(g.Label())
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Export renders guilds in the named format.
func Export(guilds []models.Guild, format, title string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(guilds)
	case FormatMarkdown, "md":
		return ExportToMarkdown(guilds, title)
	case FormatText, "txt", "":
		return ExportToText(guilds)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want csv, markdown or text)", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders guilds and writes them to path.
func WriteExport(guilds []models.Guild, format, title, path string) error {
	data, err := Export(guilds, format, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
