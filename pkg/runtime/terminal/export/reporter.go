package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
)

// Reporter prints the outcome of a batch run to the console.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) Handle(summary *domain.RunSummary) error {
	tmpl := `
{{.Procedure}} ({{.Range.Start.Format "2006-01-02"}} to {{.Range.End.Format "2006-01-02"}})
{{if .Artifacts}}
Generated {{len .Artifacts}} file(s):
{{range .Artifacts}}  - {{.Path}} ({{.Rows}} rows, period {{.Period.Suffix}})
{{end}}{{else}}
No files were generated.
{{end}}`

	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(r.writer, summary)
}
