package timeline

import (
	"fmt"
	"html/template"
	"io"
	"math"
)

var chartTemplate = template.Must(template.New("timeline").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script type="text/javascript" src="https://www.gstatic.com/charts/loader.js"></script>
<script type="text/javascript">
google.charts.load('current', {'packages':['timeline']});
google.charts.setOnLoadCallback(drawChart);
function drawChart() {
	var container = document.getElementById('timeline');
	var chart = new google.visualization.Timeline(container);
	var dataTable = new google.visualization.DataTable();
	dataTable.addColumn({ type: 'string', id: 'Kind' });
	dataTable.addColumn({ type: 'string', id: 'Name' });
	dataTable.addColumn({ type: 'number', id: 'Start' });
	dataTable.addColumn({ type: 'number', id: 'End' });
	dataTable.addRows([
{{- range .Rows}}
		[{{.Kind}}, {{.Name}}, {{.StartMS}}, {{.EndMS}}],
{{- end}}
	]);
	chart.draw(dataTable, { timeline: { groupByRowLabel: true } });
}
</script>
</head>
<body>
<div id="timeline" style="height: {{.Height}}px;"></div>
</body>
</html>
`))

type chartRow struct {
	Kind    string
	Name    string
	StartMS int64
	EndMS   int64
}

type chartData struct {
	Title  string
	Height int
	Rows   []chartRow
}

// WriteHTML renders rows as a Google Charts timeline page. Times are
// plotted in milliseconds of simulation time.
func WriteHTML(w io.Writer, title string, rows []Row) error {
	data := chartData{Title: title, Height: 100 + 41*kinds(rows)}
	for _, r := range rows {
		data.Rows = append(data.Rows, chartRow{
			Kind:    r.Kind,
			Name:    r.Name,
			StartMS: int64(math.Round(r.Start * 1000)),
			EndMS:   int64(math.Round(r.End * 1000)),
		})
	}
	if err := chartTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render timeline: %w", err)
	}
	return nil
}

func kinds(rows []Row) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.Kind] = struct{}{}
	}
	return len(seen)
}
