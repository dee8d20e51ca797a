package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var printTmpl = template.Must(template.ParseFS(templateFS, "templates/print.html"))

type printData struct {
	Table
	Printed string
}

// Print renders t as a standalone HTML page that opens the print dialog
// once loaded.
func Print(w io.Writer, t Table) error {
	data := printData{Table: t, Printed: time.Now().Format("02/01/2006 15:04")}
	if err := printTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render print view: %w", err)
	}
	return nil
}
