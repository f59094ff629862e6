package bundle

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/spf13/afero"

	"github.com/Norgate-AV/mpb/internal/utils"
)

var modlistTemplate = template.Must(template.New("modlist").Parse(
	`<html><body><h1>{{.Title}}</h1><ul>{{range .Mods}}<li>{{.}}</li>{{end}}</ul></body></html>
`))

// WriteModlist renders the human readable list of mods shipped in the pack
func WriteModlist(fs afero.Fs, path, title string, mods []string) error {
	var buf bytes.Buffer

	err := modlistTemplate.Execute(&buf, struct {
		Title string
		Mods  []string
	}{title, mods})
	if err != nil {
		return fmt.Errorf("failed to render modlist: %w", err)
	}

	if err := utils.AtomicWriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write modlist: %w", err)
	}

	return nil
}
